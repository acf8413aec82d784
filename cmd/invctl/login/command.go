package login

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/cmdutils"
)

func Cmd() *cobra.Command {
	var password string

	cmd := cmdutils.CobraCommand(
		"login EMAIL",
		"Sign in to the inventory backend",
		"Authenticates against the backend and stores the issued credential for later commands.",
		func(ctx context.Context, app *business.App, args []string) error {
			return run(ctx, app, args[0], password)
		},
	)
	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

func run(ctx context.Context, app *business.App, email, password string) error {
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	user, err := app.Session.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", user.Email, user.Role)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
