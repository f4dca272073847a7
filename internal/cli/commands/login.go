package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/organico-dev/organico/internal/permissions"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Ache Seu Orgânico API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set ORGANICO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set ORGANICO_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, email, password string) error {
	// Environment fallbacks, useful for scripting
	if email == "" {
		email = os.Getenv("ORGANICO_EMAIL")
	}
	if password == "" {
		password = os.Getenv("ORGANICO_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or ORGANICO_EMAIL env var)")
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or ORGANICO_PASSWORD env var)")
		}
	}

	sess, _ := newSession()

	fmt.Printf("Logging in to %s...\n", apiBaseURL())
	if err := sess.Login(cmd.Context(), email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	user := sess.CurrentUser()
	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.FullName, user.Email)
	fmt.Printf("  Role: %s\n", permissions.RoleLabel(user.Role))
	fmt.Printf("  Home: %s\n", permissions.HomeRouteFor(user))
	if permissions.NeedsProfileCompletion(user) {
		fmt.Println("  Note: your profile is incomplete, run 'organico perfil --first-name ... --last-name ...' to finish it")
	}

	return nil
}
