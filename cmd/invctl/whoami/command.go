package whoami

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/cmdutils"
	"github.com/openinv/invctl/internal/session"
)

func Cmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"whoami",
		"Show the signed-in user",
		"Validates the stored credential against the backend and prints the authenticated user's profile.",
		run,
	)
}

func run(ctx context.Context, app *business.App, _ []string) error {
	state, err := app.Session.CheckAuth(ctx)
	if err != nil {
		return err
	}
	if state.Status != session.StatusAuthenticated {
		fmt.Println("Not logged in. Run `invctl login` to sign in.")
		return nil
	}

	u := state.User
	fmt.Printf("%s\n  name: %s\n  role: %s\n  active: %t\n", u.Email, u.FullName, u.Role, u.IsActive)
	return nil
}
