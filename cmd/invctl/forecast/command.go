package forecast

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
	var (
		limit   int
		urgency string
	)

	cmd := cmdutils.CobraCommand(
		"forecast",
		"Stock-out forecasts and reorder suggestions",
		"Prints per-product stock-out forecasts based on recent sales, most urgent first.",
		func(ctx context.Context, app *business.App, _ []string) error {
			forecasts, err := app.API.Forecasts(ctx, limit, urgency)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SKU\tNAME\tQTY\tDAILY SALES\tDAYS LEFT\tREORDER\tURGENCY")
			for _, f := range forecasts {
				daysLeft := "-"
				if f.DaysUntilStockout != nil {
					daysLeft = fmt.Sprintf("%.1f", *f.DaysUntilStockout)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%s\t%d\t%s\n",
					f.SKU, f.Name, f.CurrentQuantity, f.AvgDailySales, daysLeft, f.SuggestedReorder, f.Urgency)
			}
			return w.Flush()
		},
	)
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	cmd.Flags().StringVar(&urgency, "urgency", "", "only this urgency (critical, warning, ok)")

	return cmd
}
