package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"api_pos/internal/inventory"
	"api_pos/internal/locale"
	"api_pos/internal/logging"
	"api_pos/internal/report"
	"api_pos/internal/sales"
	"api_pos/internal/session"
)

// AdminRole may export reports and edit the catalogue.
const AdminRole = "admin"

// ImageDeleter removes an uploaded image by its public ID.
type ImageDeleter interface {
	DeleteImage(ctx context.Context, publicID string) error
}

// Deps carries everything the routes need. Nothing is read from package
// globals.
type Deps struct {
	Sales        *sales.Service
	Inventory    *inventory.Service
	Exporter     *report.Exporter
	Sessions     *session.Resolver
	SessionStore session.Store
	Logger       *zap.Logger

	// Images is nil when no media credentials are configured.
	Images ImageDeleter

	// TracingService enables otelgin spans under this service name.
	TracingService string
}

// InitRoutes registers the middleware chain and every endpoint on e.
func InitRoutes(e *gin.Engine, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	e.SetHTMLTemplate(pageTemplates)
	e.Use(gin.Recovery(), logging.Middleware(d.Logger))
	if d.TracingService != "" {
		e.Use(otelgin.Middleware(d.TracingService))
	}
	e.Use(locale.Middleware(), session.Middleware(d.Sessions))

	salesHandler := NewSalesHandler(d.Sales, d.Logger)
	productHandler := NewProductHandler(d.Inventory, d.Logger)
	reportHandler := NewReportHandler(d.Sales, d.Inventory, d.Exporter, d.Logger)
	mediaHandler := NewMediaHandler(d.Images, d.Logger)
	pages := NewPageHandler(d.SessionStore, d.Inventory, d.Logger)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Auth pages: signed-in users are sent to the dashboard.
	guest := e.Group("/", session.GuestOnly(session.DefaultLanding))
	guest.GET("/login", pages.handleLogin)
	guest.GET("/register", pages.handleRegister)

	e.GET(session.UnauthorizedRoute, pages.handleUnauthorized)
	e.POST("/logout", pages.handleLogout)
	e.GET("/locale", pages.handleGetLocale)
	e.POST("/locale", pages.handleSetLocale)

	e.POST("/api/cloudinary/delete", mediaHandler.handleDeleteImage)

	signedIn := e.Group("/", session.RequireUser())
	signedIn.GET("/dashboard", pages.handleDashboard)
	signedIn.GET("/api/sales", salesHandler.handleSearchSales)
	signedIn.POST("/api/sales", salesHandler.handleRecordSale)
	signedIn.GET("/api/sales/:id", salesHandler.handleGetSale)
	signedIn.GET("/api/products", productHandler.handleListProducts)
	signedIn.GET("/api/products/low-stock", productHandler.handleLowStock)
	signedIn.GET("/api/products/:id", productHandler.handleGetProduct)

	admin := e.Group("/", session.RequireRole(AdminRole))
	admin.POST("/api/products", productHandler.handleSaveProduct)
	admin.GET("/reports/:kind", reportHandler.handleExport)
}
