package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _ := newSession()
			// Logout is local only, no server round trip and no failure mode
			sess.Logout()
			fmt.Println("✓ Logged out")
			return nil
		},
	}
}
