// Package dashboard implements `invctl dashboard`: the aggregate views an
// operator checks first thing in the morning.
package dashboard

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/cmdutils"
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Inventory overview",
	}

	cmd.AddCommand(statsCmd(), lowStockCmd(), valueCmd())

	return cmd
}

func statsCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"stats",
		"Overall inventory numbers",
		"Prints the headline inventory statistics.",
		func(ctx context.Context, app *business.App, _ []string) error {
			stats, err := app.API.DashboardStats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("products:         %d\n", stats.TotalProducts)
			fmt.Printf("categories:       %d\n", stats.TotalCategories)
			fmt.Printf("total quantity:   %d\n", stats.TotalQuantity)
			fmt.Printf("inventory value:  %.2f\n", stats.TotalInventoryValue)
			fmt.Printf("low stock items:  %d\n", stats.LowStockCount)
			return nil
		},
	)
}

func lowStockCmd() *cobra.Command {
	var limit int

	cmd := cmdutils.CobraCommand(
		"low-stock",
		"Products at or below their threshold",
		"Lists products whose quantity has reached the low stock threshold.",
		func(ctx context.Context, app *business.App, _ []string) error {
			items, err := app.API.LowStock(ctx, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SKU\tNAME\tQTY\tTHRESHOLD\tCATEGORY")
			for _, item := range items {
				category := "-"
				if item.CategoryName != nil {
					category = *item.CategoryName
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", item.SKU, item.Name, item.Quantity, item.LowStockThreshold, category)
			}
			return w.Flush()
		},
	)
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum rows")

	return cmd
}

func valueCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"value",
		"Inventory value per category",
		"Breaks the total inventory value down by category.",
		func(ctx context.Context, app *business.App, _ []string) error {
			values, err := app.API.CategoryValues(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tPRODUCTS\tQTY\tVALUE")
			for _, v := range values {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\n", v.CategoryName, v.ProductCount, v.TotalQuantity, v.TotalValue)
			}
			return w.Flush()
		},
	)
}
