package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap/zaptest"

	"api_pos/internal/inventory"
	"api_pos/internal/locale"
	"api_pos/internal/media"
	"api_pos/internal/report"
	"api_pos/internal/sales"
	"api_pos/internal/session"
)

type fakeDeleter struct {
	calls []string
	err   error
}

func (f *fakeDeleter) DeleteImage(_ context.Context, publicID string) error {
	f.calls = append(f.calls, publicID)
	return f.err
}

type testEnv struct {
	router    *gin.Engine
	sessions  *session.MemoryStore
	inventory *inventory.Service
	admin     string
	cashier   string
}

func initRoutesTests(t *testing.T, images ImageDeleter) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	exporter, err := report.NewExporter(logger, noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	store := session.NewMemoryStore(time.Hour)
	admin, err := store.Create(context.Background(), session.User{ID: "u-admin", Name: "Luis", Role: AdminRole})
	require.NoError(t, err)
	cashier, err := store.Create(context.Background(), session.User{ID: "u-cashier", Name: "Ana", Role: "cashier"})
	require.NoError(t, err)

	inv := inventory.NewService(inventory.NewLocalStorage(), logger)
	deps := Deps{
		Sales:        sales.NewService(sales.NewLocalStorage(), logger),
		Inventory:    inv,
		Exporter:     exporter,
		Sessions:     session.NewResolver(store, logger),
		SessionStore: store,
		Logger:       logger,
		Images:       images,
	}

	router := gin.New()
	InitRoutes(router, deps)

	return &testEnv{router: router, sessions: store, inventory: inv, admin: admin, cashier: cashier}
}

func (e *testEnv) do(method, path, token string, body []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func mustJSON(t *testing.T, v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// TestSalesHappyPath_FullFlow records a sale, searches it, then exports it.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	env := initRoutesTests(t, nil)
	var saleID string

	t.Run("POST_RecordSale", func(t *testing.T) {
		body := mustJSON(t, map[string]any{
			"timestamp":     1700000000,
			"total":         100,
			"tax":           8.5,
			"finalTotal":    108.5,
			"paymentMethod": "card",
			"customerInfo":  map[string]string{"name": "Marie", "email": "marie@example.com"},
		})
		w := env.do(http.MethodPost, "/api/sales", env.cashier, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created sales.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Ana", created.SoldByName, "seller defaults to the signed-in user")
		assert.Equal(t, sales.StatusCompleted, created.Status)
		saleID = created.ID
	})
	require.NotEmpty(t, saleID)

	t.Run("GET_SearchSales", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/sales?sold_by=Ana", env.cashier, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Results  []sales.Sale        `json:"results"`
			Metadata sales.SalesMetadata `json:"metadata"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, saleID, resp.Results[0].ID)
		assert.Equal(t, 1, resp.Metadata.Completed)
		assert.Equal(t, 108.5, resp.Metadata.TotalAmount)
	})

	t.Run("GET_Sale", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/sales/"+saleID, env.cashier, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got sales.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, saleID, got.ID)
		require.NotNil(t, got.CustomerInfo)
		assert.Equal(t, "Marie", got.CustomerInfo.Name)
	})

	t.Run("GET_Sale_NotFound", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/sales/missing", env.cashier, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"sale not found"}`, w.Body.String())
	})

	t.Run("GET_SearchSales_InvalidStatus", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/sales?status=approved", env.cashier, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GET_ExportSalesCSV", func(t *testing.T) {
		w := env.do(http.MethodGet, "/reports/sales", env.admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="sales-report.csv"`, w.Header().Get("Content-Disposition"))

		lines := strings.Split(w.Body.String(), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Date,ID,Total,Tax,Final Total,Payment Method,Sold By,Customer,Status", lines[0])
		assert.Equal(t, fmt.Sprintf("2023-11-14,%s,100,8.5,108.5,card,Ana,Marie,completed", saleID), lines[1])
	})
}

func TestExport_Inventory(t *testing.T) {
	env := initRoutesTests(t, nil)

	w := env.do(http.MethodGet, "/reports/inventory", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"), "empty export must not produce a download")

	var resp struct {
		Notifications []struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "warning", resp.Notifications[0].Level)
	assert.Equal(t, "No inventory data to export", resp.Notifications[0].Message)

	body := mustJSON(t, inventory.Product{ID: "p1", Name: "Widget", Category: "tools", Price: 9.99, Stock: 5, MinStockLevel: 2})
	w = env.do(http.MethodPost, "/api/products", env.admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/reports/inventory?format=csv", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="inventory-report.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID,Name,Category,Price,Stock,Min Stock,Supplier\np1,Widget,tools,9.99,5,2,", w.Body.String())

	w = env.do(http.MethodGet, "/reports/inventory?format=xlsx", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="inventory-report.xlsx"`, w.Header().Get("Content-Disposition"))
}

func TestExport_Access(t *testing.T) {
	env := initRoutesTests(t, nil)

	w := env.do(http.MethodGet, "/reports/sales", env.cashier, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, session.UnauthorizedRoute, w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/reports/sales", "", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = env.do(http.MethodGet, "/reports/customers", env.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/reports/sales?format=pdf", env.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport_LocalizedWarning(t *testing.T) {
	env := initRoutesTests(t, nil)

	w := env.do(http.MethodGet, "/reports/sales", env.admin, nil, &http.Cookie{Name: locale.CookieName, Value: "fr"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Aucune donn")
}

func TestProducts(t *testing.T) {
	env := initRoutesTests(t, nil)
	ctx := context.Background()
	_, err := env.inventory.SaveProduct(ctx, inventory.Product{ID: "p1", Name: "Widget", Category: "tools", Stock: 5, MinStockLevel: 2})
	require.NoError(t, err)
	_, err = env.inventory.SaveProduct(ctx, inventory.Product{ID: "p2", Name: "Apple", Category: "food", Stock: 1, MinStockLevel: 3})
	require.NoError(t, err)

	var resp struct {
		Results []inventory.Product `json:"results"`
	}

	w := env.do(http.MethodGet, "/api/products?category=food", env.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "p2", resp.Results[0].ID)

	w = env.do(http.MethodGet, "/api/products/low-stock", env.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "p2", resp.Results[0].ID)

	w = env.do(http.MethodGet, "/api/products/p1", env.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product inventory.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, "Widget", product.Name)

	w = env.do(http.MethodGet, "/api/products/p9", env.cashier, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"product not found"}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/products/p1", "", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code, "product lookup needs a session")

	w = env.do(http.MethodPost, "/api/products", env.cashier, mustJSON(t, inventory.Product{Name: "x", Category: "y"}))
	assert.Equal(t, http.StatusSeeOther, w.Code, "only admins edit the catalogue")

	w = env.do(http.MethodPost, "/api/products", env.admin, mustJSON(t, inventory.Product{Category: "y"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteImage(t *testing.T) {
	tests := []struct {
		name       string
		body       []byte
		deleter    *fakeDeleter
		wantStatus int
		wantBody   string
	}{
		{"no body", nil, &fakeDeleter{}, http.StatusBadRequest, `{"error":"Public ID is required"}`},
		{"missing publicId", []byte(`{"other":"x"}`), &fakeDeleter{}, http.StatusBadRequest, `{"error":"Public ID is required"}`},
		{"success", []byte(`{"publicId":"products/widget"}`), &fakeDeleter{}, http.StatusOK, `{"success":true}`},
		{"not deleted", []byte(`{"publicId":"gone"}`), &fakeDeleter{err: fmt.Errorf("%w: result %q", media.ErrNotDeleted, "not found")}, http.StatusInternalServerError, `{"error":"Failed to delete image"}`},
		{"transport failure", []byte(`{"publicId":"x"}`), &fakeDeleter{err: errors.New("dial tcp: timeout")}, http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := initRoutesTests(t, tt.deleter)
			req := httptest.NewRequest(http.MethodPost, "/api/cloudinary/delete", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestDeleteImage_NotConfigured(t *testing.T) {
	env := initRoutesTests(t, nil)

	w := env.do(http.MethodPost, "/api/cloudinary/delete", "", []byte(`{"publicId":"x"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestLocale(t *testing.T) {
	env := initRoutesTests(t, nil)

	w := env.do(http.MethodGet, "/locale", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"locale":"en"}`, w.Body.String())

	form := url.Values{"locale": {"fr"}}
	req := httptest.NewRequest(http.MethodPost, "/locale", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/dashboard?tab=stock")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard?tab=stock", w.Header().Get("Location"), "reload the page the user came from")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, locale.CookieName, cookies[0].Name)
	assert.Equal(t, "fr", cookies[0].Value)

	w = env.do(http.MethodGet, "/locale", "", nil, cookies[0])
	assert.JSONEq(t, `{"locale":"fr"}`, w.Body.String())

	w = env.do(http.MethodPost, "/locale", "", []byte(`{"locale":"de"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestLocale_ForeignRefererGoesHome(t *testing.T) {
	env := initRoutesTests(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/locale", strings.NewReader(`{"locale":"en"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://evil.example.org/phish")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestBackTo(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{"none", "", "/"},
		{"same host", "http://example.com/dashboard?tab=stock", "/dashboard?tab=stock"},
		{"relative", "/reports", "/reports"},
		{"root", "http://example.com", "/"},
		{"foreign host", "https://evil.example.org/phish", "/"},
		{"double slash path", "http://example.com//evil.example.org/phish", "/"},
		{"backslash is escaped", "/\\evil.example.org/phish", "/%5Cevil.example.org/phish"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/locale", nil)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, backTo(req))
		})
	}
}

func TestIsLocalPath(t *testing.T) {
	assert.True(t, isLocalPath("/"))
	assert.True(t, isLocalPath("/dashboard"))
	assert.False(t, isLocalPath("//evil.example.org"))
	assert.False(t, isLocalPath("/\\evil.example.org"))
	assert.False(t, isLocalPath("http://evil.example.org/"))
	assert.False(t, isLocalPath(""))
}

func TestAuthPages(t *testing.T) {
	env := initRoutesTests(t, nil)

	w := env.do(http.MethodGet, "/login", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Sign in</h1>")

	w = env.do(http.MethodGet, "/register", "", nil, &http.Cookie{Name: locale.CookieName, Value: "fr"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `lang="fr"`)

	w = env.do(http.MethodGet, "/login", env.cashier, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/unauthorized", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "You do not have permission")
}

func TestDashboardAndLogout(t *testing.T) {
	env := initRoutesTests(t, nil)

	w := env.do(http.MethodGet, "/dashboard", env.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		User          session.User `json:"user"`
		Locale        string       `json:"locale"`
		LowStockCount int          `json:"low_stock_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, "Ana", dash.User.Name)
	assert.Equal(t, "en", dash.Locale)
	assert.Equal(t, 0, dash.LowStockCount)

	w = env.do(http.MethodPost, "/logout", env.cashier, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	_, err := env.sessions.Get(context.Background(), env.cashier)
	assert.ErrorIs(t, err, session.ErrNoSession)

	w = env.do(http.MethodGet, "/dashboard", env.cashier, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, session.UnauthorizedRoute, w.Header().Get("Location"))
}

func TestPing(t *testing.T) {
	env := initRoutesTests(t, nil)
	w := env.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
