package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/inventory"
)

type productHandler struct {
	inventory *inventory.Service
	logger    *zap.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(inv *inventory.Service, logger *zap.Logger) *productHandler {
	return &productHandler{inventory: inv, logger: logger}
}

func (h *productHandler) handleListProducts(ctx *gin.Context) {
	products, err := h.inventory.List(ctx.Request.Context(), ctx.Query("category"))
	if err != nil {
		h.logger.Error("error listing products", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": products})
}

func (h *productHandler) handleGetProduct(ctx *gin.Context) {
	product, err := h.inventory.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (h *productHandler) handleLowStock(ctx *gin.Context) {
	products, err := h.inventory.LowStock(ctx.Request.Context())
	if err != nil {
		h.logger.Error("error listing low stock products", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": products})
}

func (h *productHandler) handleSaveProduct(ctx *gin.Context) {
	var req inventory.Product
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	product, err := h.inventory.SaveProduct(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, inventory.ErrInvalidProduct) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save product"})
		return
	}
	ctx.JSON(http.StatusCreated, product)
}
