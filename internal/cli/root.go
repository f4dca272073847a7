// Package cli assembles the organico command tree
package cli

import (
	"fmt"
	"os"

	"github.com/organico-dev/organico/internal/cli/commands"
	"github.com/spf13/cobra"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "organico",
	Short: "Ache Seu Orgânico - find organic producers near you",
	Long: `Organico CLI - Browse fairs, stores and organic producers.

Consumers can search selling points and keep a list of favorites;
producers manage their own selling points. Sessions are stored in the
OS keychain and refreshed automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("organico version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewPerfilCmd())
	rootCmd.AddCommand(commands.NewFeirasCmd())
	rootCmd.AddCommand(commands.NewFavoritasCmd())
	rootCmd.AddCommand(commands.NewProdutosCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
