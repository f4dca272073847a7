package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/organico-dev/organico/internal/cli/client"
	"github.com/organico-dev/organico/internal/cli/session"
	"github.com/organico-dev/organico/internal/cli/tokenstore"
	"github.com/organico-dev/organico/internal/guard"
	"github.com/organico-dev/organico/internal/permissions"
)

const defaultAPIURL = "http://localhost:8080"

// apiBaseURL resolves the server address, preferring the environment
func apiBaseURL() string {
	if url := os.Getenv("ORGANICO_API_URL"); url != "" {
		return url
	}
	return defaultAPIURL
}

// newSession wires the keyring store, the API client and the session store.
// This is the common entry point for every command.
func newSession() (*session.Store, *client.Client) {
	tokens := tokenstore.NewKeyring()
	apiClient := client.New(apiBaseURL(), tokens)
	return session.New(apiClient, tokens), apiClient
}

// requireAccess bootstraps the session and checks the command's access
// requirement. The returned error tells the user where to go instead.
func requireAccess(ctx context.Context, s *session.Store, req guard.Requirement) error {
	s.Bootstrap(ctx)

	decision := guard.Decide(req, s.IsLoading(), s.CurrentUser(), "")
	switch decision.Outcome {
	case guard.Allowed:
		return nil
	case guard.RedirectLogin:
		return fmt.Errorf("you are not logged in (run 'organico login')")
	case guard.RedirectHome:
		return fmt.Errorf("this command requires a %s account", permissions.RoleLabel(req.RequireRole))
	default:
		return fmt.Errorf("session is still loading, try again")
	}
}
