package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/cmdutils"
)

func Cmd() *cobra.Command {
	var watch time.Duration

	cmd := cmdutils.CobraCommand(
		"refresh",
		"Renew the access token before it expires",
		"Refreshes the stored access token when its expiry falls inside the configured window. With --watch the command keeps running and renews on an interval.",
		func(ctx context.Context, app *business.App, _ []string) error {
			if watch > 0 {
				return app.RefreshLoop(ctx, watch)
			}

			refreshed, err := app.RefreshOnce(ctx)
			if err != nil {
				return err
			}
			if refreshed {
				fmt.Println("Token refreshed")
			} else {
				fmt.Println("Token still fresh")
			}
			return nil
		},
	)
	cmd.Flags().DurationVar(&watch, "watch", 0, "keep running and refresh on this interval")

	return cmd
}
