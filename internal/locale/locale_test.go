package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest_DefaultsToEnglish(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, English, FromRequest(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "de"})
	assert.Equal(t, English, FromRequest(r), "unsupported values fall back to the default")
}

func TestSet_RoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	Set(w, French)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "fr", c.Value)
	assert.Equal(t, 365*24*60*60, c.MaxAge)
	assert.False(t, c.HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	assert.Equal(t, French, FromRequest(r))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var got Locale
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) { got = FromContext(c) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "fr"})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, French, got)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "No sales data to export", Message(English, MsgNoSalesData))
	assert.Equal(t, "Aucune donnée de vente à exporter", Message(French, MsgNoSalesData))
	assert.Equal(t, "missing.key", Message(French, "missing.key"))
}
