// Package guard decides whether a navigation target may be entered given the
// current session state. It is the gate evaluated before rendering any
// protected screen or running any protected command.
package guard

import "github.com/organico-dev/organico/internal/permissions"

// Requirement is the access policy declared on a navigation target
type Requirement struct {
	RequireAuth bool
	RequireRole string // permissions.RoleConsumer or RoleProducer, empty means any
}

// Outcome is the result of evaluating a Requirement against the session
type Outcome int

const (
	// Loading means the session is still bootstrapping; no decision yet
	Loading Outcome = iota
	// Allowed means the target may be entered
	Allowed
	// RedirectLogin means the user must authenticate first
	RedirectLogin
	// RedirectHome means the user's role does not permit the target
	RedirectHome
)

// String returns a readable name for the outcome
func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Allowed:
		return "allowed"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one navigation attempt
type Decision struct {
	Outcome Outcome
	// From remembers the originally requested target on login redirects so a
	// caller can return there after authenticating. Best-effort only.
	From string
}

// Decide evaluates a navigation attempt. loading mirrors the session store's
// bootstrap flag: while it is set the only possible outcome is Loading, which
// always resolves once bootstrap completes.
func Decide(req Requirement, loading bool, user *permissions.User, target string) Decision {
	if loading {
		return Decision{Outcome: Loading}
	}

	if req.RequireAuth && !permissions.IsAuthenticated(user) {
		return Decision{Outcome: RedirectLogin, From: target}
	}

	if req.RequireRole != "" {
		authorized := permissions.IsAuthenticated(user) && user.Role == req.RequireRole
		if !authorized {
			return Decision{Outcome: RedirectHome}
		}
	}

	return Decision{Outcome: Allowed}
}
