package commands

import (
	"fmt"

	"github.com/organico-dev/organico/internal/cli/client"
	"github.com/organico-dev/organico/internal/guard"
	"github.com/organico-dev/organico/internal/permissions"
	"github.com/spf13/cobra"
)

// NewPerfilCmd creates the profile update command
func NewPerfilCmd() *cobra.Command {
	var firstName, lastName, phone, avatar string

	cmd := &cobra.Command{
		Use:   "perfil",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, apiClient := newSession()
			if err := requireAccess(cmd.Context(), sess, guard.Requirement{RequireAuth: true}); err != nil {
				return err
			}

			var update client.ProfileUpdate
			changed := false
			if cmd.Flags().Changed("first-name") {
				update.FirstName = &firstName
				changed = true
			}
			if cmd.Flags().Changed("last-name") {
				update.LastName = &lastName
				changed = true
			}
			if cmd.Flags().Changed("phone") {
				update.Phone = &phone
				changed = true
			}
			if cmd.Flags().Changed("avatar") {
				update.Avatar = &avatar
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to update (set --first-name, --last-name, --phone or --avatar)")
			}

			user, err := apiClient.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}

			fmt.Println("✓ Profile updated")
			fmt.Printf("  User: %s (%s)\n", user.FullName, user.Email)
			if user.Phone != "" {
				fmt.Printf("  Phone: %s\n", user.Phone)
			}
			if permissions.NeedsProfileCompletion(user) {
				fmt.Println("  Note: your profile is still missing a first or last name")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")

	return cmd
}
