package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/studyhub/backend/internal/model"
	"github.com/studyhub/backend/internal/service"
)

type AuthHandler struct {
	svc    *service.AuthService
	logger logrus.FieldLogger
}

func NewAuthHandler(svc *service.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Username, email and password"
// @Success 201 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Missing username, email or password"})
		return
	}

	if err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.MessageResponse{Message: "User registered successfully"})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Missing email or password"})
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Progress godoc
// @Summary Get study progress of the current user
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ProgressResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /progress [get]
func (h *AuthHandler) Progress(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Access token missing"})
		return
	}
	c.JSON(http.StatusOK, service.StudyProgress(user.Username))
}

func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Password must be at most 72 bytes"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Missing required fields"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, model.ErrorResponse{Message: "Username or email already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid email or password"})
	default:
		h.logger.WithError(err).Error("auth request failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Server error"})
	}
}
