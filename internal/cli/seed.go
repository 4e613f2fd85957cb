package cli

import (
	"fmt"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/spf13/cobra"
)

func newSeedCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load starter data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "products",
		Short: "Load the default product catalogue when it is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.services(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := svc.Product.SeedDefaultProducts(ctx, domain.SystemOperator)
			if err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalogue already populated, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", n)
			return nil
		},
	})
	return cmd
}
