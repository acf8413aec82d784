package search

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/cmdutils"
)

func Cmd() *cobra.Command {
	var explain bool

	cmd := cmdutils.CobraCommand(
		"search QUERY...",
		"Natural language product search",
		"Sends a natural language query to the backend's smart search and prints the matching products.",
		func(ctx context.Context, app *business.App, args []string) error {
			result, err := app.API.SmartSearch(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if explain {
				parsed, err := yaml.Marshal(result.ParsedQuery)
				if err != nil {
					return fmt.Errorf("rendering parsed query: %w", err)
				}
				fmt.Printf("interpreted via %s as:\n%s\n", result.ParseMethod, parsed)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSKU\tNAME\tQTY\tPRICE")
			for _, p := range result.Results {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2f\n", p.ID, p.SKU, p.Name, p.Quantity, p.UnitPrice)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("%d match(es)\n", result.Total)
			return nil
		},
	)
	cmd.Args = cobra.MinimumNArgs(1)
	cmd.Flags().BoolVar(&explain, "explain", false, "show how the query was interpreted")

	return cmd
}
