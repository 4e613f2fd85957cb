package cli

import (
	"fmt"
	"os"
	"time"

	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/spf13/cobra"
)

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Produce reports",
	}

	var (
		year, month int
		format      string
		out         string
	)
	monthly := &cobra.Command{
		Use:   "monthly",
		Short: "Render the monthly cash report as PDF or XLSX",
		Example: `  jos_admin report monthly --year 2026 --month 3
  jos_admin report monthly --format xlsx --out marzo.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := portssvc.ReportFormat(format)
			if f != portssvc.ReportPDF && f != portssvc.ReportXLSX {
				return fmt.Errorf("unsupported format %q (pdf or xlsx)", format)
			}
			now := time.Now().In(a.cfg.ShopLocation)
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("month must be between 1 and 12, got %d", month)
			}
			if out == "" {
				out = fmt.Sprintf("cassa_%04d_%02d.%s", year, month, f)
			}

			ctx := cmd.Context()
			svc, cleanup, err := a.services(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := svc.Reporting.RenderMonthlyReport(ctx, year, month, f, file); err != nil {
				file.Close()
				_ = os.Remove(out)
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
			return nil
		},
	}
	monthly.Flags().IntVar(&year, "year", 0, "Year (default current)")
	monthly.Flags().IntVar(&month, "month", 0, "Month 1-12 (default current)")
	monthly.Flags().StringVar(&format, "format", string(portssvc.ReportPDF), "pdf or xlsx")
	monthly.Flags().StringVarP(&out, "out", "o", "", "Output file (default cassa_YYYY_MM.<format>)")

	cmd.AddCommand(monthly)
	return cmd
}
