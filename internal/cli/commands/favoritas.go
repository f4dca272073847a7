package commands

import (
	"fmt"

	"github.com/organico-dev/organico/internal/guard"
	"github.com/organico-dev/organico/internal/permissions"
	"github.com/spf13/cobra"
)

// NewFavoritasCmd creates the favorites command group (consumers only)
func NewFavoritasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favoritas",
		Short: "Manage your favorite selling points",
	}

	cmd.AddCommand(newFavoritasListCmd())
	cmd.AddCommand(newFavoritasToggleCmd())
	cmd.AddCommand(newFavoritasCheckCmd())

	return cmd
}

var consumerOnly = guard.Requirement{RequireAuth: true, RequireRole: permissions.RoleConsumer}

func newFavoritasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your favorites, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, apiClient := newSession()
			if err := requireAccess(cmd.Context(), sess, consumerOnly); err != nil {
				return err
			}

			favorites, err := apiClient.ListFavorites(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list favorites: %w", err)
			}

			if len(favorites) == 0 {
				fmt.Println("No favorites yet")
				return nil
			}
			for _, fav := range favorites {
				name := fav.LocationID
				if fav.Location != nil && fav.Location.Name != "" {
					name = fav.Location.Name
				}
				line := fmt.Sprintf("%-26s %-30s saved %s", fav.LocationID, name, fav.CreatedAt.Format("2006-01-02"))
				if fav.Note != "" {
					line += "  (" + fav.Note + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newFavoritasToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <location-id>",
		Short: "Add or remove a selling point from your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, apiClient := newSession()
			if err := requireAccess(cmd.Context(), sess, consumerOnly); err != nil {
				return err
			}

			result, err := apiClient.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to toggle favorite: %w", err)
			}

			if result.Favorited {
				fmt.Println("✓ Added to favorites")
			} else {
				fmt.Println("✓ Removed from favorites")
			}
			return nil
		},
	}
}

func newFavoritasCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <location-id>",
		Short: "Check whether a selling point is among your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, apiClient := newSession()
			if err := requireAccess(cmd.Context(), sess, consumerOnly); err != nil {
				return err
			}

			favorited, err := apiClient.CheckFavorite(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to check favorite: %w", err)
			}

			if favorited {
				fmt.Println("favorited")
			} else {
				fmt.Println("not favorited")
			}
			return nil
		},
	}
}
