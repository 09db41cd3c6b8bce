package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/inventory"
	"api_pos/internal/locale"
	"api_pos/internal/report"
	"api_pos/internal/sales"
)

// notice is a user-facing message returned instead of a download.
type notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// notices collects the warnings raised during one export.
type notices []notice

func (n *notices) Warn(_ context.Context, message string) {
	*n = append(*n, notice{Level: "warning", Message: message})
}

type reportHandler struct {
	sales     *sales.Service
	inventory *inventory.Service
	exporter  *report.Exporter
	logger    *zap.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(s *sales.Service, inv *inventory.Service, exp *report.Exporter, logger *zap.Logger) *reportHandler {
	return &reportHandler{sales: s, inventory: inv, exporter: exp, logger: logger}
}

// handleExport handles GET /reports/:kind?format=csv|xlsx&escape=true.
// An empty record set answers with a warning notification and no download.
func (h *reportHandler) handleExport(ctx *gin.Context) {
	kind, err := report.ParseKind(ctx.Param("kind"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	format, err := report.ParseFormat(ctx.Query("format"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rctx := ctx.Request.Context()
	var rep report.Report
	switch kind {
	case report.KindSales:
		rows, err := h.sales.All(rctx)
		if err != nil {
			h.logger.Error("failed to load sales for export", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
			return
		}
		rep = report.SalesReport{Rows: rows}
	case report.KindInventory:
		rows, err := h.inventory.List(rctx, "")
		if err != nil {
			h.logger.Error("failed to load products for export", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
			return
		}
		rep = report.InventoryReport{Rows: rows}
	}

	var n notices
	art, err := h.exporter.Export(rctx, report.Request{
		Report: rep,
		Format: format,
		Locale: locale.FromContext(ctx),
		Escape: ctx.Query("escape") == "true",
	}, &n)
	if err != nil {
		h.logger.Error("failed to export report", zap.String("kind", string(kind)), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
		return
	}
	if art == nil {
		ctx.JSON(http.StatusOK, gin.H{"notifications": n})
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.Filename))
	ctx.Data(http.StatusOK, art.ContentType, art.Body)
}
