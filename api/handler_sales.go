package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/sales"
	"api_pos/internal/session"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleRecordSale handles the POST /api/sales endpoint. The seller defaults
// to the signed-in user.
func (h *salesHandler) handleRecordSale(ctx *gin.Context) {
	var req sales.Sale
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.SoldByName == "" {
		if u, ok := session.UserFrom(ctx); ok {
			req.SoldByName = u.Name
		}
	}

	sale, err := h.salesService.RecordSale(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrInvalidSale), errors.Is(err, sales.ErrInvalidStatus):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, sales.ErrDuplicateID):
			ctx.JSON(http.StatusConflict, gin.H{"error": "sale already recorded"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record sale"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, sale)
}

// handleGetSale handles GET /api/sales/:id.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, sales.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sale"})
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleSearchSales handles GET /api/sales?status=&sold_by=.
func (h *salesHandler) handleSearchSales(ctx *gin.Context) {
	filter := sales.Filter{
		Status: ctx.Query("status"),
		SoldBy: ctx.Query("sold_by"),
	}

	results, metadata, err := h.salesService.SearchSale(ctx.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, sales.ErrInvalidStatus) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("error searching sales", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search sales"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": results, "metadata": metadata})
}
