// Package userscmd implements `invctl users` and its subcommands. All of
// them require the admin role; the backend rejects staff callers.
package userscmd

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
		Use:   "users",
		Short: "Manage console users (admin only)",
	}

	cmd.AddCommand(listCmd(), getCmd(), createCmd(), updateCmd(), deactivateCmd())

	return cmd
}

func listCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"list",
		"List users",
		"Lists every user account, active or not.",
		func(ctx context.Context, app *business.App, _ []string) error {
			users, err := app.API.ListUsers(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tACTIVE")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.FullName, u.Role, u.IsActive)
			}
			return w.Flush()
		},
	)
}

func getCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"get ID",
		"Show one user",
		"Prints a single user account.",
		func(ctx context.Context, app *business.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := app.API.GetUser(ctx, id)
			if err != nil {
				return err
			}

			fmt.Printf("%s (id %d)\n  name: %s\n  role: %s\n  active: %t\n", u.Email, u.ID, u.FullName, u.Role, u.IsActive)
			return nil
		},
	)
	cmd.Args = cobra.ExactArgs(1)

	return cmd
}

func createCmd() *cobra.Command {
	var input api.UserCreate

	cmd := cmdutils.CobraCommand(
		"create",
		"Create a user",
		"Creates a user account with the given role.",
		func(ctx context.Context, app *business.App, _ []string) error {
			u, err := app.API.CreateUser(ctx, input)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (id %d)\n", u.Email, u.ID)
			return nil
		},
	)
	cmd.Flags().StringVar(&input.Email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&input.FullName, "name", "", "full name (required)")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password (required)")
	cmd.Flags().StringVar((*string)(&input.Role), "role", string(api.RoleStaff), "admin or staff")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func updateCmd() *cobra.Command {
	var (
		email, name, password, role string
		active                      bool
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a user",
		Long:  "Updates the given fields of a user account; omitted flags leave the field unchanged.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.RunE(func(ctx context.Context, app *business.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var input api.UserUpdate
		if cmd.Flags().Changed("email") {
			input.Email = &email
		}
		if cmd.Flags().Changed("name") {
			input.FullName = &name
		}
		if cmd.Flags().Changed("password") {
			input.Password = &password
		}
		if cmd.Flags().Changed("role") {
			r := api.Role(role)
			input.Role = &r
		}
		if cmd.Flags().Changed("active") {
			input.IsActive = &active
		}

		u, err := app.API.UpdateUser(ctx, id, input)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s (id %d)\n", u.Email, u.ID)
		return nil
	})
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	cmd.Flags().StringVar(&role, "role", "", "admin or staff")
	cmd.Flags().BoolVar(&active, "active", true, "account enabled")

	return cmd
}

func deactivateCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"deactivate ID",
		"Deactivate a user",
		"Disables an account. Accounts are never deleted, only deactivated.",
		func(ctx context.Context, app *business.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.API.DeactivateUser(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deactivated user %d\n", id)
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
