package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/studyhub/backend/internal/model"
	"github.com/studyhub/backend/internal/service"
)

type MaterialHandler struct {
	svc    *service.MaterialService
	logger logrus.FieldLogger
}

func NewMaterialHandler(svc *service.MaterialService, logger logrus.FieldLogger) *MaterialHandler {
	return &MaterialHandler{svc: svc, logger: logger}
}

// Upload godoc
// @Summary Upload a file or register a link
// @Description Multipart form with an optional "file" field and an optional "link" field. The file wins when both are sent.
// @Tags materials
// @Accept mpfd
// @Produce json
// @Param file formData file false "Material file"
// @Param link formData string false "External link"
// @Success 201 {object} model.Material
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /upload [post]
func (h *MaterialHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	file, err := c.FormFile("file")
	if err == nil {
		stored, err := h.svc.StoreUpload(file)
		if err != nil {
			h.writeMaterialError(c, err)
			return
		}

		material, err := h.svc.AddFile(ctx, file.Filename, file.Size, stored)
		if err != nil {
			h.writeMaterialError(c, err)
			return
		}
		c.JSON(http.StatusCreated, material)
		return
	}

	link := strings.TrimSpace(c.PostForm("link"))
	if link == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "No file or link provided"})
		return
	}

	material, err := h.svc.AddLink(ctx, link)
	if err != nil {
		h.writeMaterialError(c, err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

// ListMaterials godoc
// @Summary List materials
// @Tags materials
// @Produce json
// @Success 200 {array} model.Material
// @Failure 500 {object} model.ErrorResponse
// @Router /materials [get]
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.writeMaterialError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// DeleteMaterial godoc
// @Summary Delete a material
// @Description Removes the catalog entry; the backing file of an uploaded material is deleted on a best-effort basis.
// @Tags materials
// @Produce json
// @Param id path int true "Material ID"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /materials/{id} [delete]
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	// Ids that do not parse cannot name a material.
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.writeMaterialError(c, service.ErrNotFound)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeMaterialError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Material deleted successfully"})
}

func (h *MaterialHandler) writeMaterialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "No file or link provided"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Message: "Material not found"})
	default:
		h.logger.WithError(err).Error("material request failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Server error"})
	}
}
