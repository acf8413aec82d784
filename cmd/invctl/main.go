package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openinv/invctl/cmd/invctl/categoriescmd"
	"github.com/openinv/invctl/cmd/invctl/dashboard"
	"github.com/openinv/invctl/cmd/invctl/forecast"
	"github.com/openinv/invctl/cmd/invctl/login"
	"github.com/openinv/invctl/cmd/invctl/logout"
	"github.com/openinv/invctl/cmd/invctl/productscmd"
	"github.com/openinv/invctl/cmd/invctl/refresh"
	"github.com/openinv/invctl/cmd/invctl/search"
	"github.com/openinv/invctl/cmd/invctl/userscmd"
	"github.com/openinv/invctl/cmd/invctl/whoami"
)

// BuildInfo will be set by the build system
var BuildInfo = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Inventory console version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), BuildInfo)
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "invctl",
		Short:         "Inventory admin console",
		Long:          "invctl is the command line console for the inventory backend: authentication, products, categories, users and analytics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		versionCmd,
		login.Cmd(),
		logout.Cmd(),
		whoami.Cmd(),
		refresh.Cmd(),
		productscmd.Cmd(),
		categoriescmd.Cmd(),
		userscmd.Cmd(),
		dashboard.Cmd(),
		search.Cmd(),
		forecast.Cmd(),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Debug(ctx, "Command failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return err
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
