package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewProdutosCmd creates the product catalog command group
func NewProdutosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "produtos",
		Short: "Browse the product catalog",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List active products",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, apiClient := newSession()

			products, err := apiClient.ListProducts(cmd.Context(), search)
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}

			for _, p := range products {
				category := p.CategoryName
				if category == "" {
					category = "-"
				}
				fmt.Printf("%-30s %s\n", p.Name, category)
			}
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "Search by product name")

	categories := &cobra.Command{
		Use:   "categorias",
		Short: "List product categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, apiClient := newSession()

			cats, err := apiClient.ListCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			for _, c := range cats {
				fmt.Printf("%-24s %s\n", c.Slug, c.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(categories)

	return cmd
}
