// Package categoriescmd implements `invctl categories` and its subcommands.
package categoriescmd

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
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
	}

	cmd.AddCommand(listCmd(), getCmd(), createCmd(), updateCmd(), deleteCmd())

	return cmd
}

func listCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"list",
		"List categories",
		"Lists all categories with their product counts.",
		func(ctx context.Context, app *business.App, _ []string) error {
			categories, err := app.API.ListCategories(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRODUCTS")
			for _, c := range categories {
				fmt.Fprintf(w, "%d\t%s\t%d\n", c.ID, c.Name, c.ProductCount)
			}
			return w.Flush()
		},
	)
}

func getCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"get ID",
		"Show one category",
		"Prints a single category.",
		func(ctx context.Context, app *business.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := app.API.GetCategory(ctx, id)
			if err != nil {
				return err
			}

			fmt.Printf("%s (id %d)\n", c.Name, c.ID)
			if c.Description != nil {
				fmt.Printf("  description: %s\n", *c.Description)
			}
			fmt.Printf("  products: %d\n", c.ProductCount)
			return nil
		},
	)
	cmd.Args = cobra.ExactArgs(1)

	return cmd
}

func createCmd() *cobra.Command {
	var description string

	cmd := cmdutils.CobraCommand(
		"create NAME",
		"Create a category",
		"Creates a category. Names must be unique.",
		func(ctx context.Context, app *business.App, args []string) error {
			input := api.CategoryCreate{Name: args[0]}
			if description != "" {
				input.Description = &description
			}
			c, err := app.API.CreateCategory(ctx, input)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (id %d)\n", c.Name, c.ID)
			return nil
		},
	)
	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().StringVar(&description, "description", "", "free-form description")

	return cmd
}

func updateCmd() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a category",
		Long:  "Updates the given fields of a category; omitted flags leave the field unchanged.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.RunE(func(ctx context.Context, app *business.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var input api.CategoryUpdate
		if cmd.Flags().Changed("name") {
			input.Name = &name
		}
		if cmd.Flags().Changed("description") {
			input.Description = &description
		}

		c, err := app.API.UpdateCategory(ctx, id, input)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s (id %d)\n", c.Name, c.ID)
		return nil
	})
	cmd.Flags().StringVar(&name, "name", "", "category name")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")

	return cmd
}

func deleteCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"delete ID",
		"Delete a category",
		"Deletes a category. The backend refuses when products still reference it.",
		func(ctx context.Context, app *business.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.API.DeleteCategory(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted category %d\n", id)
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
