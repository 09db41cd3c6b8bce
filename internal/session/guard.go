// Package session resolves who is signed in and gates routes on it.
package session

// Status is the resolution state of a session lookup.
type Status int

const (
	// Pending means the session is not known yet.
	Pending Status = iota
	// Resolved means the lookup finished, with or without a user.
	Resolved
)

// User is the signed-in identity.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// State is a session snapshot.
type State struct {
	Status Status
	User   *User
}

// ActionKind is what a guarded page should do for a state.
type ActionKind int

const (
	// RenderNothing suspends the page.
	RenderNothing ActionKind = iota
	// RenderChildren shows the guarded page.
	RenderChildren
	// Navigate sends the visitor to Action.Route.
	Navigate
)

// Action is the outcome of Guard.Observe.
type Action struct {
	Kind  ActionKind
	Route string
}

// DefaultLanding is where signed-in users are sent from auth pages.
const DefaultLanding = "/dashboard"

// Guard keeps signed-in users off the auth pages. It issues one navigation
// per resolved identity: observing the same user again renders nothing, a
// different user navigates again.
type Guard struct {
	landing   string
	navigated string // ID of the user last navigated for, "" if none
}

// NewGuard returns a Guard that navigates to landing.
func NewGuard(landing string) *Guard {
	if landing == "" {
		landing = DefaultLanding
	}
	return &Guard{landing: landing}
}

// Observe feeds the guard the current state and returns what to render.
func (g *Guard) Observe(s State) Action {
	if s.Status == Pending {
		return Action{Kind: RenderNothing}
	}
	if s.User == nil {
		g.navigated = ""
		return Action{Kind: RenderChildren}
	}
	if s.User.ID == g.navigated {
		return Action{Kind: RenderNothing}
	}
	g.navigated = s.User.ID
	return Action{Kind: Navigate, Route: g.landing}
}
