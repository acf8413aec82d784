package logout

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/cmdutils"
)

func Cmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"logout",
		"Sign out and forget the stored credential",
		"Tells the backend to drop the session and removes the locally stored credential, even when the backend cannot be reached.",
		func(ctx context.Context, app *business.App, _ []string) error {
			if err := app.Session.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	)
}
