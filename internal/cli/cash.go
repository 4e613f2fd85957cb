package cli

import (
	"time"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/spf13/cobra"
)

func newCashCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cash",
		Short: "Inspect the cash ledger",
	}

	var date string
	state := &cobra.Command{
		Use:   "state",
		Short: "Print the computed state of a business day as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = domain.DateOf(time.Now(), a.cfg.ShopLocation)
			}

			ctx := cmd.Context()
			svc, cleanup, err := a.services(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := svc.Ledger.ComputeDailyState(ctx, date)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dto.ToDailyStateResponse(st))
		},
	}
	state.Flags().StringVar(&date, "date", "", "Business date YYYY-MM-DD (default today)")

	cmd.AddCommand(state)
	return cmd
}
