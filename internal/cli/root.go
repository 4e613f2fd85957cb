// Package cli implements jos_admin, the operator command line for maintenance
// tasks that have no place in the HTTP API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gestionale-jos/jos_backend/internal/core/services"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/notify"
	"github.com/gestionale-jos/jos_backend/internal/platform/config"
	"github.com/gestionale-jos/jos_backend/internal/repositories"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// app carries what every subcommand needs once the root pre-run has loaded it.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	verbose bool
}

// NewRootCommand builds the jos_admin command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "jos_admin",
		Short: "Maintenance commands for the JOS rotisserie backend",
		Long: `jos_admin runs maintenance tasks against the configured store:
database migrations, catalogue seeding, user bootstrap, monthly reports
and quick checks of a business day.

Configuration comes from the same environment variables (and .env file)
as the API server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(a.logger)

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newMigrateCommand(a),
		newSeedCommand(a),
		newUserCommand(a),
		newReportCommand(a),
		newCashCommand(a),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		slog.Error("Command execution failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// services opens the store (applying pending migrations) and wires the services
// without any event fan-out.
func (a *app) services(ctx context.Context) (*portssvc.ServiceContainer, func(), error) {
	repos, cleanup, err := repositories.Open(ctx, a.cfg, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	container := services.NewServiceContainer(a.cfg, repos, notify.Multi{}, nil)
	return container, cleanup, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
