package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UnauthorizedRoute is where privileged routes send visitors who lack access.
const UnauthorizedRoute = "/unauthorized"

const stateKey = "session.state"

// Middleware resolves the session once per request and stores it in the gin
// context for the gates below and for handlers.
func Middleware(r *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(stateKey, r.ResolveRequest(c.Request))
		c.Next()
	}
}

// StateFrom returns the state stored by Middleware. Without it the state is
// pending.
func StateFrom(c *gin.Context) State {
	if v, ok := c.Get(stateKey); ok {
		if s, ok := v.(State); ok {
			return s
		}
	}
	return State{Status: Pending}
}

// UserFrom returns the resolved user, if any.
func UserFrom(c *gin.Context) (*User, bool) {
	s := StateFrom(c)
	return s.User, s.Status == Resolved && s.User != nil
}

// GuestOnly guards auth pages: signed-in users are redirected to landing,
// guests see the page, and an unresolved session renders nothing.
func GuestOnly(landing string) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := NewGuard(landing).Observe(StateFrom(c))
		switch action.Kind {
		case Navigate:
			c.Redirect(http.StatusSeeOther, action.Route)
			c.Abort()
		case RenderNothing:
			c.AbortWithStatus(http.StatusServiceUnavailable)
		case RenderChildren:
			c.Next()
		}
	}
}

// RequireRole admits resolved users whose role equals role; an empty role
// admits any signed-in user. Everyone else is redirected to the unauthorized
// page.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := StateFrom(c)
		if s.Status == Pending {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		if s.User == nil || (role != "" && s.User.Role != role) {
			c.Redirect(http.StatusSeeOther, UnauthorizedRoute)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireUser admits any signed-in user.
func RequireUser() gin.HandlerFunc {
	return RequireRole("")
}
