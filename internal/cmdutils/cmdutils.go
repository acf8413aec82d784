// Package cmdutils glues cobra commands to the application stack: it loads
// the configuration, initialises logging and builds the wired App before
// handing control to the command's business function.
package cmdutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/config"
	"github.com/openinv/invctl/internal/serviceerr"
)

// ConfigDirs are searched in order for config.yaml.
var ConfigDirs = []string{"/etc/invctl", "$HOME/.invctl", "."}

// RunFunc is a command's business logic, handed the fully wired App and
// the positional arguments.
type RunFunc func(ctx context.Context, app *business.App, args []string) error

// CobraCommand builds a command whose RunE loads config, initialises the
// logger and the App, and runs fn. Commands needing flags attach them to
// the returned command.
func CobraCommand(use, short, long string, fn RunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE:  RunE(fn),
	}
}

// RunE adapts fn into a cobra run function.
func RunE(fn RunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(ConfigDirs...)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if err := InitLogger(cfg.Logger); err != nil {
			return oops.In("cli").Wrapf(err, "Failed to initialise the logger")
		}
		slogctx.Debug(cmd.Context(), "Starting", "command", cmd.Name())

		app, err := business.NewApp(cfg)
		if err != nil {
			return oops.In("cli").Wrapf(err, "Failed to build the application")
		}

		if err := fn(cmd.Context(), app, args); err != nil {
			PrintSessionHint(cmd.ErrOrStderr(), err)
			return err
		}
		return nil
	}
}

// PrintSessionHint tells the user how to recover from an invalidated
// session. Reports whether the hint applied to err.
func PrintSessionHint(w io.Writer, err error) bool {
	if !errors.Is(err, serviceerr.ErrSessionInvalid) {
		return false
	}
	_, _ = fmt.Fprintln(w, "Your session has expired. Run `invctl login` to sign in again.")
	return true
}

// InitLogger installs the process-wide slog default according to the
// logger config. Logs go to stderr so command output stays parseable.
func InitLogger(cfg config.Logger) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text", "":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	slog.SetDefault(slog.New(slogctx.NewHandler(handler, nil)))
	return nil
}
