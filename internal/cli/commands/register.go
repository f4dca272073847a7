package commands

import (
	"fmt"
	"syscall"

	"github.com/organico-dev/organico/internal/cli/client"
	"github.com/organico-dev/organico/internal/permissions"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewRegisterCmd creates the account registration command
func NewRegisterCmd() *cobra.Command {
	var (
		email     string
		firstName string
		lastName  string
		userType  string
		phone     string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("email is required (use --email)")
			}
			if userType != permissions.RoleConsumer && userType != permissions.RoleProducer {
				return fmt.Errorf("--type must be CONSUMER or PRODUCER")
			}

			if !term.IsTerminal(int(syscall.Stdin)) {
				return fmt.Errorf("register needs an interactive terminal to read the password")
			}
			fmt.Print("Password: ")
			password, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Println()
			fmt.Print("Confirm password: ")
			confirm, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Println()

			sess, _ := newSession()
			err = sess.Register(cmd.Context(), client.RegisterData{
				Email:           email,
				Password:        string(password),
				PasswordConfirm: string(confirm),
				FirstName:       firstName,
				LastName:        lastName,
				UserType:        userType,
				Phone:           phone,
			})
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			user := sess.CurrentUser()
			fmt.Println("✓ Account created!")
			fmt.Printf("  User: %s (%s)\n", user.FullName, user.Email)
			fmt.Printf("  Role: %s\n", permissions.RoleLabel(user.Role))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&userType, "type", permissions.RoleConsumer, "Account type: CONSUMER or PRODUCER")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (optional)")

	return cmd
}
