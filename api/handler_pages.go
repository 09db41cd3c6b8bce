package api

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/internal/inventory"
	"api_pos/internal/locale"
	"api_pos/internal/session"
)

var pageTemplates = template.Must(template.New("page.html").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<main>
<h1>{{.Title}}</h1>
{{with .Body}}<p>{{.}}</p>{{end}}
</main>
</body>
</html>
`))

type pageHandler struct {
	sessions  session.Store
	inventory *inventory.Service
	logger    *zap.Logger
}

// NewPageHandler creates the handler for the server-rendered pages.
func NewPageHandler(sessions session.Store, inv *inventory.Service, logger *zap.Logger) *pageHandler {
	return &pageHandler{sessions: sessions, inventory: inv, logger: logger}
}

func renderPage(ctx *gin.Context, status int, titleKey, bodyKey string) {
	l := locale.FromContext(ctx)
	data := gin.H{"Lang": string(l), "Title": locale.Message(l, titleKey)}
	if bodyKey != "" {
		data["Body"] = locale.Message(l, bodyKey)
	}
	ctx.HTML(status, "page.html", data)
}

func (h *pageHandler) handleLogin(ctx *gin.Context) {
	renderPage(ctx, http.StatusOK, locale.MsgSignIn, "")
}

func (h *pageHandler) handleRegister(ctx *gin.Context) {
	renderPage(ctx, http.StatusOK, locale.MsgRegister, "")
}

func (h *pageHandler) handleUnauthorized(ctx *gin.Context) {
	renderPage(ctx, http.StatusForbidden, locale.MsgUnauthorized, locale.MsgUnauthorizedTip)
}

func (h *pageHandler) handleDashboard(ctx *gin.Context) {
	user, _ := session.UserFrom(ctx)

	low, err := h.inventory.LowStock(ctx.Request.Context())
	if err != nil {
		h.logger.Error("error loading low stock for dashboard", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":            user,
		"locale":          locale.FromContext(ctx),
		"low_stock_count": len(low),
	})
}

// handleLogout ends the session and returns to the sign-in page.
func (h *pageHandler) handleLogout(ctx *gin.Context) {
	if c, err := ctx.Request.Cookie(session.CookieName); err == nil && c.Value != "" {
		if err := h.sessions.Delete(ctx.Request.Context(), c.Value); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	session.ClearCookie(ctx.Writer)
	ctx.Redirect(http.StatusSeeOther, "/login")
}

func (h *pageHandler) handleGetLocale(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"locale": locale.FromContext(ctx)})
}

// handleSetLocale persists the chosen locale and redirects back to the
// referring page so it is rendered again in the new language.
func (h *pageHandler) handleSetLocale(ctx *gin.Context) {
	var req struct {
		Locale string `json:"locale" form:"locale"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	l, ok := locale.Parse(req.Locale)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unsupported locale"})
		return
	}

	locale.Set(ctx.Writer, l)
	ctx.Redirect(http.StatusSeeOther, backTo(ctx.Request))
}

// backTo returns the path of a same-host Referer, or "/".
func backTo(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}
	path := u.RequestURI()
	if u.Path == "" || !isLocalPath(path) {
		return "/"
	}
	return path
}

// isLocalPath rejects paths a browser could read as protocol-relative.
func isLocalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	return len(p) == 1 || (p[1] != '/' && p[1] != '\\')
}
