package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/studyhub/backend/internal/config"
	"github.com/studyhub/backend/internal/db"
	"github.com/studyhub/backend/internal/handler"
	"github.com/studyhub/backend/internal/logging"
	"github.com/studyhub/backend/internal/metrics"
	"github.com/studyhub/backend/internal/router"
	"github.com/studyhub/backend/internal/service"
)

// @title Study Backend API
// @version 1.0
// @description Account registration, session login and the study-material registry.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Log)
	gin.SetMode(cfg.Server.GinMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tokens, err := service.NewTokenService(cfg.Auth)
	if err != nil {
		logger.WithError(err).Fatal("auth configuration invalid")
	}

	authSvc := service.NewAuthService(db.NewUserStore(), tokens, m, logger)
	materialSvc := service.NewMaterialService(db.NewMaterialStore(), cfg.Storage, m, logger)
	defer materialSvc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := materialSvc.Reconcile(ctx); err != nil {
		logger.WithError(err).Error("material reconciliation failed, starting with empty catalog")
	}

	r := router.Setup(router.Deps{
		Server:    cfg.Server,
		UploadDir: cfg.Storage.UploadDir,
		Logger:    logger,
		Metrics:   m,
		Tokens:    tokens,
		Auth:      handler.NewAuthHandler(authSvc, logger),
		Materials: handler.NewMaterialHandler(materialSvc, logger),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
