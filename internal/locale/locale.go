// Package locale persists the display-language preference in a cookie and
// resolves it for server-rendered content.
package locale

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Locale is a supported display language.
type Locale string

const (
	English Locale = "en"
	French  Locale = "fr"

	// Default applies when no valid cookie is present.
	Default = English

	// CookieName is the client-readable cookie holding the preference.
	CookieName = "locale"

	// MaxAge is the cookie lifetime.
	MaxAge = 365 * 24 * time.Hour

	contextKey = "locale"
)

// Parse returns the locale for s and whether it is supported.
func Parse(s string) (Locale, bool) {
	switch Locale(s) {
	case English, French:
		return Locale(s), true
	}
	return "", false
}

// FromRequest reads the preference cookie, falling back to Default.
func FromRequest(r *http.Request) Locale {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Default
	}
	if l, ok := Parse(c.Value); ok {
		return l
	}
	return Default
}

// Set persists l. The cookie is readable by client scripts (not HttpOnly).
func Set(w http.ResponseWriter, l Locale) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(l),
		Path:     "/",
		MaxAge:   int(MaxAge / time.Second),
		Expires:  time.Now().Add(MaxAge),
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware stores the request locale in the gin context.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, FromRequest(c.Request))
		c.Next()
	}
}

// FromContext returns the locale set by Middleware, or Default.
func FromContext(c *gin.Context) Locale {
	if v, ok := c.Get(contextKey); ok {
		if l, ok := v.(Locale); ok {
			return l
		}
	}
	return Default
}
