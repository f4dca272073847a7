package commands

import (
	"fmt"

	"github.com/organico-dev/organico/internal/cli/client"
	"github.com/organico-dev/organico/internal/guard"
	"github.com/organico-dev/organico/internal/permissions"
	"github.com/spf13/cobra"
)

// NewFeirasCmd creates the location browsing command group
func NewFeirasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feiras",
		Short: "Browse fairs, stores and other selling points",
	}

	cmd.AddCommand(newFeirasListCmd())
	cmd.AddCommand(newFeirasMapCmd())
	cmd.AddCommand(newFeirasMinhasCmd())

	return cmd
}

func newFeirasListCmd() *cobra.Command {
	var locationType, city, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active selling points",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, apiClient := newSession()
			// Public listing, but bootstrap anyway so favorites are flagged
			sess.Bootstrap(cmd.Context())

			locations, err := apiClient.ListLocations(cmd.Context(), client.LocationFilters{
				LocationType: locationType,
				City:         city,
				Search:       search,
			})
			if err != nil {
				return fmt.Errorf("failed to list locations: %w", err)
			}

			if len(locations) == 0 {
				fmt.Println("No selling points found")
				return nil
			}
			printLocations(locations)
			return nil
		},
	}

	cmd.Flags().StringVar(&locationType, "type", "", "Filter by type (FAIR, STORE, FARM, DELIVERY, OTHER)")
	cmd.Flags().StringVar(&city, "city", "", "Filter by city")
	cmd.Flags().StringVar(&search, "search", "", "Search by name or description")

	return cmd
}

func newFeirasMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map",
		Short: "List the selling points that carry coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, apiClient := newSession()

			locations, err := apiClient.MapData(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load map data: %w", err)
			}

			for _, loc := range locations {
				lat, lng := 0.0, 0.0
				if loc.Latitude != nil {
					lat = *loc.Latitude
				}
				if loc.Longitude != nil {
					lng = *loc.Longitude
				}
				fmt.Printf("%-30s  %9.5f, %9.5f  %s/%s\n", loc.Name, lat, lng, loc.City, loc.State)
			}
			return nil
		},
	}
}

func newFeirasMinhasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "minhas",
		Short: "List your own selling points (producers only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, apiClient := newSession()
			req := guard.Requirement{RequireAuth: true, RequireRole: permissions.RoleProducer}
			if err := requireAccess(cmd.Context(), sess, req); err != nil {
				return err
			}

			locations, err := apiClient.MyLocations(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list your locations: %w", err)
			}

			if len(locations) == 0 {
				fmt.Println("You have no selling points yet")
				return nil
			}
			printLocations(locations)
			return nil
		},
	}
}

func printLocations(locations []client.LocationSummary) {
	fmt.Printf("%-26s %-30s %-10s %-20s %s\n", "ID", "NAME", "TYPE", "CITY", "PRODUCTS")
	for _, loc := range locations {
		city := loc.City
		if loc.State != "" {
			city = fmt.Sprintf("%s/%s", loc.City, loc.State)
		}
		marker := ""
		if loc.IsFavorited != nil && *loc.IsFavorited {
			marker = " ★"
		}
		fmt.Printf("%-26s %-30s %-10s %-20s %d%s\n", loc.ID, loc.Name, loc.LocationType, city, loc.ProductCount, marker)
	}
}
