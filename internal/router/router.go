package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/studyhub/backend/internal/config"
	"github.com/studyhub/backend/internal/handler"
	"github.com/studyhub/backend/internal/metrics"
	"github.com/studyhub/backend/internal/service"
)

type Deps struct {
	Server    config.ServerConfig
	UploadDir string
	Logger    logrus.FieldLogger
	Metrics   *metrics.Metrics
	Tokens    *service.TokenService
	Auth      *handler.AuthHandler
	Materials *handler.MaterialHandler
}

func Setup(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		handler.RequestLogger(d.Logger),
		handler.MetricsMiddleware(d.Metrics),
		handler.CORSMiddleware(d.Server.AllowedOrigins, false),
	)

	r.GET("/", handler.Root)
	r.GET("/ping", handler.Ping)
	r.GET("/openapi.json", handler.OpenAPIDoc)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	r.POST("/register", d.Auth.Register)
	r.POST("/signin", d.Auth.Register)
	r.POST("/login", d.Auth.Login)
	r.GET("/progress", handler.AuthMiddleware(d.Tokens), d.Auth.Progress)

	r.POST("/upload", d.Materials.Upload)
	r.GET("/materials", d.Materials.ListMaterials)
	r.DELETE("/materials/:id", d.Materials.DeleteMaterial)
	r.Static("/uploads", d.UploadDir)

	r.NoRoute(handler.NotFound)
	return r
}
