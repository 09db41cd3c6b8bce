package session

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// CookieName carries the session token.
const CookieName = "session"

// Resolver turns a session token into a State.
type Resolver struct {
	store  Store
	logger *zap.Logger
}

// NewResolver returns a Resolver backed by store.
func NewResolver(store Store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve looks token up. An empty or unknown token resolves to no user; a
// store failure leaves the state pending.
func (r *Resolver) Resolve(ctx context.Context, token string) State {
	if token == "" {
		return State{Status: Resolved}
	}
	u, err := r.store.Get(ctx, token)
	if errors.Is(err, ErrNoSession) {
		return State{Status: Resolved}
	}
	if err != nil {
		r.logger.Warn("session lookup failed", zap.Error(err))
		return State{Status: Pending}
	}
	return State{Status: Resolved, User: u}
}

// ResolveRequest resolves the session cookie of req.
func (r *Resolver) ResolveRequest(req *http.Request) State {
	c, err := req.Cookie(CookieName)
	if err != nil {
		return State{Status: Resolved}
	}
	return r.Resolve(req.Context(), c.Value)
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
