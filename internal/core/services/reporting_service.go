package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/report"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentItems = 5

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	ledger        portssvc.LedgerReaderSvc
	reportingRepo portsrepo.ReportingRepository
	cardRepo      portsrepo.CardPaymentReader
	movementRepo  portsrepo.CashMovementReader
	issuer        report.Issuer
	loc           *time.Location
	now           func() time.Time
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingIssuer sets the shop details printed on exported reports.
func WithReportingIssuer(issuer report.Issuer) ReportingServiceOption {
	return func(s *reportingService) {
		s.issuer = issuer
	}
}

// WithReportingLocation sets the shop time zone used to resolve "today".
func WithReportingLocation(loc *time.Location) ReportingServiceOption {
	return func(s *reportingService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithReportingClock overrides the clock, for tests.
func WithReportingClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.now = now
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(
	ledger portssvc.LedgerReaderSvc,
	reportingRepo portsrepo.ReportingRepository,
	cardRepo portsrepo.CardPaymentReader,
	movementRepo portsrepo.CashMovementReader,
	options ...ReportingServiceOption,
) portssvc.ReportingService {
	svc := &reportingService{
		ledger:        ledger,
		reportingRepo: reportingRepo,
		cardRepo:      cardRepo,
		movementRepo:  movementRepo,
		loc:           time.Local,
		now:           time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func monthBounds(year, month int) (string, string, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return "", "", fmt.Errorf("%w: invalid period %d-%02d", apperrors.ErrValidation, year, month)
	}
	from, to := domain.MonthRange(year, time.Month(month))
	return from, to, nil
}

// MonthlyReport lists every recorded day of the month. Totals cover closed days only;
// card sales are always taken from the live card payments.
func (s *reportingService) MonthlyReport(ctx context.Context, year, month int) (*domain.MonthlyReport, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}

	var (
		records   []domain.DailyCashRecord
		cardSales map[string]decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.ledger.ListDailyRecords(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		cardSales, err = s.reportingRepo.CardSalesByDate(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to load monthly report data",
			slog.Int("year", year),
			slog.Int("month", month))
		return nil, fmt.Errorf("failed to build monthly report: %w", err)
	}

	rep := &domain.MonthlyReport{
		Year:             year,
		Month:            month,
		TotalCashSales:   decimal.Zero,
		TotalCardSales:   decimal.Zero,
		TotalOtherIncome: decimal.Zero,
		TotalExpenses:    decimal.Zero,
		TotalIncome:      decimal.Zero,
		TotalDiscrepancy: decimal.Zero,
		DailyAverage:     decimal.Zero,
		Days:             make([]domain.DailyReportRow, 0, len(records)),
		GeneratedAt:      s.now().UTC(),
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.Date] = true
		if card, ok := cardSales[rec.Date]; ok {
			rec.CardSales = card
		} else {
			rec.CardSales = decimal.Zero
		}
		rep.Days = append(rep.Days, reportRow(rec))
	}
	// Card-only days have no snapshot yet but still belong in the detail.
	for date, card := range cardSales {
		if seen[date] {
			continue
		}
		rep.Days = append(rep.Days, reportRow(domain.DailyCashRecord{
			Date:             date,
			OpeningFloat:     decimal.Zero,
			CashSales:        decimal.Zero,
			CardSales:        card,
			OtherIncome:      decimal.Zero,
			Expenses:         decimal.Zero,
			TheoreticalFloat: decimal.Zero,
		}))
	}
	sort.Slice(rep.Days, func(i, j int) bool { return rep.Days[i].Date < rep.Days[j].Date })

	salesTotal := decimal.Zero
	for _, row := range rep.Days {
		if !row.Closed {
			continue
		}
		rep.DaysClosed++
		rep.TotalCashSales = rep.TotalCashSales.Add(row.CashSales)
		rep.TotalCardSales = rep.TotalCardSales.Add(row.CardSales)
		rep.TotalOtherIncome = rep.TotalOtherIncome.Add(row.OtherIncome)
		rep.TotalExpenses = rep.TotalExpenses.Add(row.Expenses)
		rep.TotalIncome = rep.TotalIncome.Add(row.TotalIncome)
		if row.Discrepancy != nil {
			rep.TotalDiscrepancy = rep.TotalDiscrepancy.Add(*row.Discrepancy)
		}
		salesTotal = salesTotal.Add(row.CashSales).Add(row.CardSales)
	}
	if rep.DaysClosed > 0 {
		rep.DailyAverage = salesTotal.Div(decimal.NewFromInt(int64(rep.DaysClosed))).Round(2)
	}
	return rep, nil
}

func reportRow(rec domain.DailyCashRecord) domain.DailyReportRow {
	return domain.DailyReportRow{
		Date:             rec.Date,
		OpeningFloat:     rec.OpeningFloat,
		CashSales:        rec.CashSales,
		CardSales:        rec.CardSales,
		OtherIncome:      rec.OtherIncome,
		Expenses:         rec.Expenses,
		TotalIncome:      rec.TotalIncome(),
		TheoreticalFloat: rec.TheoreticalFloat,
		ActualFloat:      rec.ActualFloat,
		Discrepancy:      rec.Discrepancy,
		Closed:           rec.Closed,
		Note:             rec.Note,
	}
}

func (s *reportingService) RenderMonthlyReport(ctx context.Context, year, month int, format portssvc.ReportFormat, w io.Writer) error {
	rep, err := s.MonthlyReport(ctx, year, month)
	if err != nil {
		return err
	}
	switch format {
	case portssvc.ReportPDF:
		err = report.MonthlyPDF(w, s.issuer, *rep)
	case portssvc.ReportXLSX:
		err = report.MonthlyXLSX(w, s.issuer, *rep)
	default:
		return fmt.Errorf("%w: unsupported report format %q", apperrors.ErrValidation, format)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to render monthly report",
			slog.Int("year", year),
			slog.Int("month", month),
			slog.String("format", string(format)))
		return fmt.Errorf("failed to render monthly report: %w", err)
	}
	return nil
}

// Dashboard summarises date, defaulting to today in the shop time zone.
func (s *reportingService) Dashboard(ctx context.Context, date string) (*domain.DashboardStats, error) {
	if date == "" {
		date = domain.DateOf(s.now(), s.loc)
	}
	day, err := domain.ParseDate(date, time.UTC)
	if err != nil {
		return nil, err
	}
	weekStart := day.AddDate(0, 0, -6).Format(domain.DateLayout)
	monthStart, _ := domain.MonthRange(day.Year(), day.Month())

	stats := &domain.DashboardStats{Date: date}
	var (
		state    *domain.DailyState
		week     map[string]decimal.Decimal
		invoices map[domain.InvoiceStatus]portsrepo.StatusTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state, err = s.ledger.ComputeDailyState(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		week, err = s.reportingRepo.CardSalesByDate(gctx, weekStart, date)
		return err
	})
	g.Go(func() error {
		var err error
		invoices, err = s.reportingRepo.InvoiceTotalsByStatus(gctx, monthStart, date)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentCardPayments, err = s.cardRepo.ListCardPayments(gctx, domain.CardPaymentFilter{Limit: dashboardRecentItems})
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentMovements, err = s.movementRepo.FindRecentMovements(gctx, dashboardRecentItems)
		return err
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to build dashboard", slog.String("date", date))
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	stats.DayOpened = state.Opened
	stats.DayClosed = state.Closed
	stats.CashBalance = state.TheoreticalFloat
	stats.CardToday = decimal.Zero
	stats.CardLast7Days = decimal.Zero
	for d, total := range week {
		stats.CardLast7Days = stats.CardLast7Days.Add(total)
		if d == date {
			stats.CardToday = total
		}
	}
	stats.InvoicedThisMonthAmount = decimal.Zero
	for status, total := range invoices {
		if status == domain.InvoiceVoid {
			continue
		}
		stats.InvoicesThisMonth += total.Count
		stats.InvoicedThisMonthAmount = stats.InvoicedThisMonthAmount.Add(total.Total)
	}
	if stats.RecentCardPayments == nil {
		stats.RecentCardPayments = []domain.CardPayment{}
	}
	if stats.RecentMovements == nil {
		stats.RecentMovements = []domain.CashMovement{}
	}
	return stats, nil
}
