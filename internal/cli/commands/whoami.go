package commands

import (
	"fmt"

	"github.com/organico-dev/organico/internal/guard"
	"github.com/organico-dev/organico/internal/permissions"
	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the command that shows the current session
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _ := newSession()
			if err := requireAccess(cmd.Context(), sess, guard.Requirement{RequireAuth: true}); err != nil {
				return err
			}

			user := sess.CurrentUser()
			fmt.Printf("User:  %s\n", user.FullName)
			fmt.Printf("Email: %s\n", user.Email)
			fmt.Printf("Role:  %s\n", permissions.RoleLabel(user.Role))
			if user.Phone != "" {
				fmt.Printf("Phone: %s\n", user.Phone)
			}
			fmt.Printf("Home:  %s\n", permissions.HomeRouteFor(user))
			if permissions.NeedsProfileCompletion(user) {
				fmt.Println("Profile: incomplete")
			}
			return nil
		},
	}
}
