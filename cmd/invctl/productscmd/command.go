// Package productscmd implements `invctl products` and its subcommands.
package productscmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openinv/invctl/internal/api"
	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/cmdutils"
	"github.com/openinv/invctl/internal/products"
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage products",
	}

	cmd.AddCommand(
		listCmd(),
		getCmd(),
		createCmd(),
		updateCmd(),
		setQtyCmd(),
		deleteCmd(),
		exportCmd(),
		importCmd(),
	)

	return cmd
}

func listCmd() *cobra.Command {
	var (
		page         int
		pageSize     int
		searchTerm   string
		categoryID   int64
		lowStockOnly bool
	)

	cmd := cmdutils.CobraCommand(
		"list",
		"List products",
		"Lists products with paging, text search, category and low-stock filters.",
		func(ctx context.Context, app *business.App, _ []string) error {
			patch := products.Patch{Page: &page}
			if pageSize > 0 {
				patch.PageSize = &pageSize
			}
			if searchTerm != "" {
				patch.Search = &searchTerm
			}
			if categoryID > 0 {
				patch.CategoryID = &categoryID
			}
			if lowStockOnly {
				patch.LowStockOnly = &lowStockOnly
			}

			if err := app.Products.SetFilters(ctx, patch); err != nil {
				return err
			}
			return printListing(app.Products.State())
		},
	)
	cmd.Flags().IntVar(&page, "page", 1, "page to fetch")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "items per page (0 uses the configured default)")
	cmd.Flags().StringVar(&searchTerm, "search", "", "match against SKU, name and description")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "only products in this category")
	cmd.Flags().BoolVar(&lowStockOnly, "low-stock", false, "only products at or below their threshold")

	return cmd
}

func printListing(state products.State) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSKU\tNAME\tQTY\tPRICE\tLOW")
	for _, p := range state.Items {
		low := ""
		if p.IsLowStock {
			low = "!"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2f\t%s\n", p.ID, p.SKU, p.Name, p.Quantity, p.UnitPrice, low)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("page %d/%d, %d total\n", state.Filters.Page, state.TotalPages, state.Total)
	return nil
}

func getCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"get ID",
		"Show one product",
		"Prints the full record of a single product.",
		func(ctx context.Context, app *business.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.API.GetProduct(ctx, id)
			if err != nil {
				return err
			}
			printProduct(p)
			return nil
		},
	)
	cmd.Args = cobra.ExactArgs(1)

	return cmd
}

func printProduct(p api.Product) {
	fmt.Printf("%s (id %d)\n", p.SKU, p.ID)
	fmt.Printf("  name: %s\n", p.Name)
	if p.Description != nil {
		fmt.Printf("  description: %s\n", *p.Description)
	}
	fmt.Printf("  quantity: %d (threshold %d)\n", p.Quantity, p.LowStockThreshold)
	fmt.Printf("  unit price: %.2f\n", p.UnitPrice)
	fmt.Printf("  total value: %.2f\n", p.TotalValue)
	if p.Category != nil {
		fmt.Printf("  category: %s\n", p.Category.Name)
	}
	if p.IsLowStock {
		fmt.Println("  low stock: yes")
	}
}

func createCmd() *cobra.Command {
	var (
		input       api.ProductCreate
		description string
		categoryID  int64
	)

	cmd := cmdutils.CobraCommand(
		"create",
		"Create a product",
		"Creates a product. The SKU must be unique; a duplicate is rejected by the backend.",
		func(ctx context.Context, app *business.App, _ []string) error {
			if description != "" {
				input.Description = &description
			}
			if categoryID > 0 {
				input.CategoryID = &categoryID
			}
			p, err := app.API.CreateProduct(ctx, input)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (id %d)\n", p.SKU, p.ID)
			return nil
		},
	)
	cmd.Flags().StringVar(&input.SKU, "sku", "", "stock keeping unit (required)")
	cmd.Flags().StringVar(&input.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().IntVar(&input.Quantity, "quantity", 0, "initial stock level")
	cmd.Flags().Float64Var(&input.UnitPrice, "price", 0, "unit price")
	cmd.Flags().IntVar(&input.LowStockThreshold, "threshold", 10, "low stock threshold")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func updateCmd() *cobra.Command {
	var (
		sku, name, description string
		quantity, threshold    int
		price                  float64
		categoryID             int64
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a product",
		Long:  "Updates the given fields of a product; omitted flags leave the field unchanged.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.RunE(func(ctx context.Context, app *business.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var input api.ProductUpdate
		if cmd.Flags().Changed("sku") {
			input.SKU = &sku
		}
		if cmd.Flags().Changed("name") {
			input.Name = &name
		}
		if cmd.Flags().Changed("description") {
			input.Description = &description
		}
		if cmd.Flags().Changed("quantity") {
			input.Quantity = &quantity
		}
		if cmd.Flags().Changed("price") {
			input.UnitPrice = &price
		}
		if cmd.Flags().Changed("threshold") {
			input.LowStockThreshold = &threshold
		}
		if cmd.Flags().Changed("category") {
			input.CategoryID = &categoryID
		}

		p, err := app.API.UpdateProduct(ctx, id, input)
		if err != nil {
			return err
		}
		printProduct(p)
		return nil
	})
	cmd.Flags().StringVar(&sku, "sku", "", "stock keeping unit")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "stock level")
	cmd.Flags().Float64Var(&price, "price", 0, "unit price")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "low stock threshold")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")

	return cmd
}

func setQtyCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"set-qty ID QUANTITY",
		"Set a product's stock level",
		"Sets the absolute stock quantity of one product.",
		func(ctx context.Context, app *business.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("parsing quantity %q: %w", args[1], err)
			}

			p, err := app.Products.UpdateQuantity(ctx, id, qty)
			if err != nil {
				return err
			}
			fmt.Printf("%s quantity is now %d\n", p.SKU, p.Quantity)
			return nil
		},
	)
	cmd.Args = cobra.ExactArgs(2)

	return cmd
}

func deleteCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"delete ID",
		"Delete a product",
		"Deletes a product permanently.",
		func(ctx context.Context, app *business.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.API.DeleteProduct(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted product %d\n", id)
			return nil
		},
	)
	cmd.Args = cobra.ExactArgs(1)

	return cmd
}

func exportCmd() *cobra.Command {
	var outPath string

	cmd := cmdutils.CobraCommand(
		"export",
		"Export all products as CSV",
		"Downloads the full product listing as CSV, to stdout or a file.",
		func(ctx context.Context, app *business.App, _ []string) error {
			data, err := app.API.ExportProductsCSV(ctx)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(data), outPath)
			return nil
		},
	)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")

	return cmd
}

func importCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"import FILE",
		"Import products from a CSV file",
		"Uploads a CSV file; rows are created or updated by SKU and per-row failures are reported without aborting the import.",
		func(ctx context.Context, app *business.App, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			summary, err := app.API.ImportProductsCSV(ctx, args[0], data)
			if err != nil {
				return err
			}

			fmt.Printf("Imported: %d created, %d updated\n", summary.Created, summary.Updated)
			for _, rowErr := range summary.Errors {
				fmt.Printf("  skipped: %s\n", rowErr)
			}
			return nil
		},
	)
	cmd.Args = cobra.ExactArgs(1)

	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing id %q: %w", arg, err)
	}
	return id, nil
}
