// Package guard decides whether the current session may open a view.
package guard

import (
	"github.com/luminher/luminher-api/internal/session"
)

// Access is the restriction placed on a view.
type Access int

const (
	// Public views are open to everyone.
	Public Access = iota
	// GuestOnly views (sign-in, registration) are pointless once signed in.
	GuestOnly
	// Authenticated views need a signed-in user.
	Authenticated
	// AdminOnly views need the admin role.
	AdminOnly
)

// View names.
const (
	ViewHome      = "home"
	ViewMap       = "map"
	ViewProgress  = "progress"
	ViewPlans     = "plans"
	ViewCommunity = "community"
	ViewAccount   = "account"
	ViewAdmin     = "admin"
	ViewLogin     = "login"
	ViewRegister  = "register"
)

// Denial reasons.
const (
	ReasonUnknownView     = "unknown view"
	ReasonSignInRequired  = "sign-in required"
	ReasonAdminRequired   = "admin role required"
	ReasonAlreadySignedIn = "already signed in"
)

// DefaultRoutes is the application's view table.
var DefaultRoutes = map[string]Access{
	ViewHome:      Public,
	ViewMap:       Public,
	ViewCommunity: Public,
	ViewProgress:  Authenticated,
	ViewPlans:     Authenticated,
	ViewAccount:   Authenticated,
	ViewAdmin:     AdminOnly,
	ViewLogin:     GuestOnly,
	ViewRegister:  GuestOnly,
}

// Decision is the outcome of a navigation check. Redirect names the view to open
// instead when Allow is false.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   string
}

// Guard checks navigation against a route table. It only reads the session.
type Guard struct {
	routes map[string]Access
	store  *session.Store
}

// New creates a Guard. A nil routes map uses DefaultRoutes.
func New(store *session.Store, routes map[string]Access) *Guard {
	if routes == nil {
		routes = DefaultRoutes
	}
	return &Guard{routes: routes, store: store}
}

// Check decides whether the current session may open view.
func (g *Guard) Check(view string) Decision {
	return Evaluate(g.routes, g.store.Current(), view)
}

// Evaluate is the pure decision behind Guard.Check.
func Evaluate(routes map[string]Access, snap session.Snapshot, view string) Decision {
	access, ok := routes[view]
	if !ok {
		return Decision{Allow: false, Redirect: ViewHome, Reason: ReasonUnknownView}
	}
	switch access {
	case GuestOnly:
		if snap.Authenticated() {
			return Decision{Allow: false, Redirect: ViewHome, Reason: ReasonAlreadySignedIn}
		}
	case Authenticated:
		if !snap.Authenticated() {
			return Decision{Allow: false, Redirect: ViewLogin, Reason: ReasonSignInRequired}
		}
	case AdminOnly:
		if !snap.Authenticated() {
			return Decision{Allow: false, Redirect: ViewLogin, Reason: ReasonSignInRequired}
		}
		if !snap.IsAdmin() {
			return Decision{Allow: false, Redirect: ViewHome, Reason: ReasonAdminRequired}
		}
	}
	return Decision{Allow: true}
}
