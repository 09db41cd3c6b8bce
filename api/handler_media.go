package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/media"
)

type mediaHandler struct {
	images ImageDeleter
	logger *zap.Logger
}

// NewMediaHandler creates a new media handler. images may be nil.
func NewMediaHandler(images ImageDeleter, logger *zap.Logger) *mediaHandler {
	return &mediaHandler{images: images, logger: logger}
}

// handleDeleteImage handles POST /api/cloudinary/delete with {"publicId": "..."}.
func (h *mediaHandler) handleDeleteImage(ctx *gin.Context) {
	var req struct {
		PublicID string `json:"publicId"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PublicID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Public ID is required"})
		return
	}

	if h.images == nil {
		h.logger.Error("image deletion requested but media credentials are not configured")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.images.DeleteImage(ctx.Request.Context(), req.PublicID); err != nil {
		h.logger.Error("error deleting image", zap.String("public_id", req.PublicID), zap.Error(err))
		if errors.Is(err, media.ErrNotDeleted) {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
