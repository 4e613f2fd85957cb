package cli

import (
	"fmt"

	"github.com/gestionale-jos/jos_backend/internal/repositories"
	"github.com/gestionale-jos/jos_backend/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(
		newMigrateDirectionCommand(a, database.Up, "Apply all pending migrations"),
		newMigrateDirectionCommand(a, database.Down, "Roll back every migration (drops all data)"),
	)
	return cmd
}

func newMigrateDirectionCommand(a *app, dir database.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(dir),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := repositories.Migrate(a.cfg, dir); err != nil {
				return fmt.Errorf("migrate %s: %w", dir, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations %s applied on %s store\n", dir, a.cfg.StoreBackend)
			return nil
		},
	}
}
