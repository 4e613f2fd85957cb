package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/report"
	"github.com/gestionale-jos/jos_backend/internal/utils/accounting"
	"github.com/gestionale-jos/jos_backend/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// invoiceService implements the InvoiceSvcFacade interface
type invoiceService struct {
	BaseService
	invoiceRepo   portsrepo.InvoiceRepositoryFacade
	clientRepo    portsrepo.ClientReader
	reportingRepo portsrepo.ReportingRepository
	issuer        report.Issuer
	loc           *time.Location
	now           func() time.Time
}

// InvoiceServiceOption is a functional option for configuring the invoice service
type InvoiceServiceOption func(*invoiceService)

// WithInvoiceRoleAuthorizer sets the role authorizer for the invoice service.
func WithInvoiceRoleAuthorizer(authorizer portssvc.UserRoleAuthorizerSvc) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.RoleAuthorizer = authorizer
	}
}

// WithInvoiceEvents sets the publisher notified after every invoice write.
func WithInvoiceEvents(publisher portssvc.EventPublisher) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.Events = publisher
	}
}

// WithInvoiceIssuer sets the shop details printed on invoice PDFs.
func WithInvoiceIssuer(issuer report.Issuer) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.issuer = issuer
	}
}

// WithInvoiceLocation sets the shop timezone used for "current year" defaults.
func WithInvoiceLocation(loc *time.Location) InvoiceServiceOption {
	return func(s *invoiceService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithInvoiceClock overrides the clock, for tests.
func WithInvoiceClock(now func() time.Time) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.now = now
	}
}

// NewInvoiceService creates a new invoice service with the provided options
func NewInvoiceService(
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	clientRepo portsrepo.ClientReader,
	reportingRepo portsrepo.ReportingRepository,
	options ...InvoiceServiceOption,
) portssvc.InvoiceSvcFacade {
	svc := &invoiceService{
		invoiceRepo:   invoiceRepo,
		clientRepo:    clientRepo,
		reportingRepo: reportingRepo,
		loc:           time.Local,
		now:           time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

func (s *invoiceService) currentYear() int {
	return s.now().In(s.loc).Year()
}

// buildLines validates line requests and resolves their VAT rates.
func buildLines(reqs []dto.InvoiceLineRequest) ([]domain.InvoiceLine, error) {
	lines := make([]domain.InvoiceLine, 0, len(reqs))
	for i, req := range reqs {
		pos := i + 1
		if strings.TrimSpace(req.Description) == "" {
			return nil, fmt.Errorf("%w: line %d: description is required", apperrors.ErrValidation, pos)
		}
		if req.Quantity.IsNegative() {
			return nil, fmt.Errorf("%w: line %d: quantity must not be negative", apperrors.ErrValidation, pos)
		}
		if req.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line %d: unit price must not be negative", apperrors.ErrValidation, pos)
		}
		if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: line %d: discount must be between 0 and 100", apperrors.ErrValidation, pos)
		}
		code, ok := domain.LookupVATCode(req.VATCode)
		if !ok {
			return nil, fmt.Errorf("%w: line %d: unknown VAT code %q", apperrors.ErrValidation, pos, req.VATCode)
		}
		rate := code.Rate
		if req.VATRate != nil {
			if req.VATRate.IsNegative() || req.VATRate.GreaterThan(hundred) {
				return nil, fmt.Errorf("%w: line %d: VAT rate must be between 0 and 100", apperrors.ErrValidation, pos)
			}
			rate = *req.VATRate
		}
		uom := strings.TrimSpace(req.UnitOfMeasure)
		if uom == "" {
			uom = "pz"
		}
		lines = append(lines, domain.InvoiceLine{
			LineID:          uuid.NewString(),
			Position:        pos,
			Description:     strings.TrimSpace(req.Description),
			Quantity:        req.Quantity,
			UnitOfMeasure:   uom,
			UnitPrice:       req.UnitPrice,
			DiscountPercent: req.DiscountPercent,
			VATRate:         rate,
			VATCode:         code.Code,
			ProductID:       req.ProductID,
		})
	}
	return lines, nil
}

func (s *invoiceService) findClient(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown client %s", apperrors.ErrValidation, clientID)
		}
		s.LogError(ctx, err, "Failed to find client", slog.String("client_id", clientID))
		return nil, err
	}
	return client, nil
}

func validateRecipient(code *string) error {
	if code != nil && *code != "" && !domain.ValidRecipientCode(*code) {
		return fmt.Errorf("%w: recipient code must be 7 letters or digits", apperrors.ErrValidation)
	}
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find invoice", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, params.Status)
	}
	if params.Month != 0 && params.Year == 0 {
		params.Year = s.currentYear()
	}
	page, perPage := pagination.Normalize(params.Page, params.PerPage)
	filter := domain.InvoiceFilter{
		Year:     params.Year,
		Month:    params.Month,
		Status:   params.Status,
		ClientID: params.ClientID,
		Limit:    perPage,
		Offset:   pagination.Offset(page, perPage),
	}
	invoices, total, err := s.invoiceRepo.ListInvoices(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices",
			slog.Int("year", params.Year),
			slog.Int("month", params.Month))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	return &dto.ListInvoicesResponse{
		Invoices:   invoices,
		Pagination: pagination.NewPage(page, perPage, total),
	}, nil
}

// NextInvoiceNumber previews the number the next invoice of year would get.
func (s *invoiceService) NextInvoiceNumber(ctx context.Context, year int) (int, error) {
	if year <= 0 {
		year = s.currentYear()
	}
	n, err := s.invoiceRepo.NextInvoiceNumber(ctx, year)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute next invoice number", slog.Int("year", year))
		return 0, fmt.Errorf("failed to compute next invoice number: %w", err)
	}
	return n, nil
}

// InvoiceStats summarises a year of invoicing, void invoices excluded.
func (s *invoiceService) InvoiceStats(ctx context.Context, year int) (*domain.InvoiceStats, error) {
	now := s.now().In(s.loc)
	if year <= 0 {
		year = now.Year()
	}
	from, _ := domain.MonthRange(year, time.January)
	_, to := domain.MonthRange(year, time.December)
	byStatus, err := s.reportingRepo.InvoiceTotalsByStatus(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate invoices", slog.Int("year", year))
		return nil, fmt.Errorf("failed to aggregate invoices: %w", err)
	}

	stats := &domain.InvoiceStats{
		Year:             year,
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		CurrentMonth:     decimal.Zero,
		GeneratedAt:      now.UTC(),
	}
	for status, t := range byStatus {
		if status == domain.InvoiceVoid {
			continue
		}
		stats.Count += t.Count
		stats.TotalInvoiced = stats.TotalInvoiced.Add(t.Total)
		switch {
		case status == domain.InvoicePaid:
			stats.PaidCount += t.Count
			stats.TotalPaid = stats.TotalPaid.Add(t.Total)
		case status.IsOutstanding():
			stats.OutstandingCount += t.Count
			stats.TotalOutstanding = stats.TotalOutstanding.Add(t.Total)
		}
	}

	if year == now.Year() {
		monthFrom, monthTo := domain.MonthRange(year, now.Month())
		month, err := s.reportingRepo.InvoiceTotalsByStatus(ctx, monthFrom, monthTo)
		if err != nil {
			s.LogError(ctx, err, "Failed to aggregate current month invoices", slog.Int("year", year))
			return nil, fmt.Errorf("failed to aggregate invoices: %w", err)
		}
		for status, t := range month {
			if status == domain.InvoiceVoid {
				continue
			}
			stats.CurrentMonthCount += t.Count
			stats.CurrentMonth = stats.CurrentMonth.Add(t.Total)
		}
	}
	return stats, nil
}

// AvailablePeriods lists the year/months having invoices, newest first.
func (s *invoiceService) AvailablePeriods(ctx context.Context) ([]domain.InvoicePeriod, error) {
	dates, err := s.invoiceRepo.ListInvoiceDates(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoice dates")
		return nil, fmt.Errorf("failed to list invoice periods: %w", err)
	}
	seen := make(map[domain.InvoicePeriod]bool)
	periods := []domain.InvoicePeriod{}
	for _, date := range dates {
		t, err := domain.ParseDate(date, time.UTC)
		if err != nil {
			s.LogDebug(ctx, "Skipping malformed invoice date", slog.String("date", date))
			continue
		}
		p := domain.InvoicePeriod{Year: t.Year(), Month: int(t.Month())}
		if !seen[p] {
			seen[p] = true
			periods = append(periods, p)
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year > periods[j].Year
		}
		return periods[i].Month > periods[j].Month
	})
	return periods, nil
}

// PreviewTotals computes the totals of lines without storing anything.
func (s *invoiceService) PreviewTotals(ctx context.Context, req dto.PreviewTotalsRequest) (*dto.InvoiceTotalsResponse, error) {
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	totals := accounting.ComputeInvoiceTotals(lines)
	lineTotals := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		lineTotals[i] = accounting.LineTotal(line).Round(2)
	}
	return &dto.InvoiceTotalsResponse{
		LineTotals: lineTotals,
		Subtotal:   totals.Subtotal,
		VAT:        totals.VAT,
		Total:      totals.Total,
	}, nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	date, err := domain.ParseDate(req.Date, time.UTC)
	if err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: an invoice needs at least one line", apperrors.ErrValidation)
	}
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}
	client, err := s.findClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	docType := req.DocumentType
	if docType == "" {
		docType = domain.DefaultDocumentType
	}
	regime := req.FiscalRegime
	if regime == "" {
		regime = domain.DefaultFiscalRegime
	}
	if !domain.ValidDocumentType(docType) || !domain.ValidFiscalRegime(regime) {
		return nil, fmt.Errorf("%w: unsupported document type or fiscal regime", apperrors.ErrValidation)
	}
	if err := validateRecipient(req.RecipientCode); err != nil {
		return nil, err
	}
	recipientCode := req.RecipientCode
	if recipientCode == nil {
		recipientCode = client.RecipientCode
	}
	recipientPEC := req.RecipientPEC
	if recipientPEC == nil {
		recipientPEC = client.PEC
	}

	now := s.now().UTC()
	inv := domain.Invoice{
		InvoiceID:      uuid.NewString(),
		Year:           date.Year(),
		ClientID:       client.ClientID,
		ClientName:     client.BusinessName,
		Date:           req.Date,
		Lines:          lines,
		Status:         domain.InvoiceDraft,
		DocumentType:   docType,
		FiscalRegime:   regime,
		Reason:         strings.TrimSpace(req.Reason),
		Notes:          strings.TrimSpace(req.Notes),
		PaymentMethod:  req.PaymentMethod,
		WithholdingTax: req.WithholdingTax,
		PensionFund:    req.PensionFund,
		RecipientCode:  recipientCode,
		RecipientPEC:   recipientPEC,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	for i := range inv.Lines {
		inv.Lines[i].InvoiceID = inv.InvoiceID
	}
	accounting.ApplyInvoiceTotals(&inv)

	number, err := s.invoiceRepo.CreateInvoice(ctx, inv)
	if err != nil {
		s.LogError(ctx, err, "Failed to create invoice",
			slog.Int("year", inv.Year),
			slog.String("client_id", inv.ClientID))
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	inv.Number = number
	s.Emit(ctx, domain.TableInvoices, domain.ActionInsert, inv.InvoiceID, inv.Date, inv)

	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", inv.InvoiceID),
		slog.String("number", inv.FullNumber()),
		slog.String("total", inv.Total.StringFixed(2)))
	return &inv, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoiceVoid {
		return nil, fmt.Errorf("%w: void invoices cannot be edited", apperrors.ErrInvalidTransition)
	}
	draft := inv.Status == domain.InvoiceDraft
	if !draft && (req.Lines != nil || req.ClientID != nil || req.Date != nil) {
		return nil, fmt.Errorf("%w: client, date and lines can only change while the invoice is a draft", apperrors.ErrInvalidTransition)
	}

	if req.Date != nil {
		date, err := domain.ParseDate(*req.Date, time.UTC)
		if err != nil {
			return nil, err
		}
		if date.Year() != inv.Year {
			return nil, fmt.Errorf("%w: the date must stay within %d, the year of number %s", apperrors.ErrValidation, inv.Year, inv.FullNumber())
		}
		inv.Date = *req.Date
	}
	if req.ClientID != nil {
		client, err := s.findClient(ctx, *req.ClientID)
		if err != nil {
			return nil, err
		}
		inv.ClientID = client.ClientID
		inv.ClientName = client.BusinessName
	}
	replaceLines := req.Lines != nil
	if replaceLines {
		lines, err := buildLines(req.Lines)
		if err != nil {
			return nil, err
		}
		for i := range lines {
			lines[i].InvoiceID = inv.InvoiceID
		}
		inv.Lines = lines
		accounting.ApplyInvoiceTotals(inv)
	}
	if req.DocumentType != nil {
		if !domain.ValidDocumentType(*req.DocumentType) {
			return nil, fmt.Errorf("%w: unsupported document type %q", apperrors.ErrValidation, *req.DocumentType)
		}
		inv.DocumentType = *req.DocumentType
	}
	if req.FiscalRegime != nil {
		if !domain.ValidFiscalRegime(*req.FiscalRegime) {
			return nil, fmt.Errorf("%w: unsupported fiscal regime %q", apperrors.ErrValidation, *req.FiscalRegime)
		}
		inv.FiscalRegime = *req.FiscalRegime
	}
	if err := validateRecipient(req.RecipientCode); err != nil {
		return nil, err
	}
	if req.Reason != nil {
		inv.Reason = strings.TrimSpace(*req.Reason)
	}
	if req.Notes != nil {
		inv.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.PaymentMethod != nil {
		inv.PaymentMethod = req.PaymentMethod
	}
	if req.WithholdingTax != nil {
		inv.WithholdingTax = req.WithholdingTax
	}
	if req.PensionFund != nil {
		inv.PensionFund = req.PensionFund
	}
	if req.RecipientCode != nil {
		inv.RecipientCode = req.RecipientCode
	}
	if req.RecipientPEC != nil {
		inv.RecipientPEC = req.RecipientPEC
	}

	inv.LastUpdatedAt = s.now().UTC()
	inv.LastUpdatedBy = userID
	if err := s.invoiceRepo.UpdateInvoice(ctx, *inv, replaceLines); err != nil {
		s.LogError(ctx, err, "Failed to update invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.Emit(ctx, domain.TableInvoices, domain.ActionUpdate, inv.InvoiceID, inv.Date, inv)

	s.LogInfo(ctx, "Invoice updated", slog.String("invoice_id", invoiceID), slog.Bool("lines_replaced", replaceLines))
	return inv, nil
}

// ChangeInvoiceStatus moves an invoice along draft -> issued -> sent -> paid, or to void.
func (s *invoiceService) ChangeInvoiceStatus(ctx context.Context, invoiceID string, req dto.ChangeInvoiceStatusRequest, userID string) (*domain.Invoice, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, req.Status)
	}
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, inv.Status, req.Status)
	}

	if req.PaymentMethod != nil {
		inv.PaymentMethod = req.PaymentMethod
	}
	if req.Status == domain.InvoicePaid {
		if req.PaymentDate != nil {
			if err := domain.ValidateDate(*req.PaymentDate); err != nil {
				return nil, err
			}
			inv.PaymentDate = req.PaymentDate
		}
		if inv.PaymentDate == nil {
			return nil, fmt.Errorf("%w: payment date is required to mark an invoice paid", apperrors.ErrValidation)
		}
	}

	previous := inv.Status
	inv.Status = req.Status
	inv.LastUpdatedAt = s.now().UTC()
	inv.LastUpdatedBy = userID
	if err := s.invoiceRepo.UpdateInvoice(ctx, *inv, false); err != nil {
		s.LogError(ctx, err, "Failed to change invoice status", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.Emit(ctx, domain.TableInvoices, domain.ActionUpdate, inv.InvoiceID, inv.Date, inv)

	s.LogInfo(ctx, "Invoice status changed",
		slog.String("invoice_id", invoiceID),
		slog.String("from", string(previous)),
		slog.String("to", string(inv.Status)))
	return inv, nil
}

// DeleteInvoice removes an invoice. Its number is not handed out again.
func (s *invoiceService) DeleteInvoice(ctx context.Context, invoiceID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleAdmin); err != nil {
		s.LogError(ctx, err, "User not authorized to delete invoice",
			slog.String("user_id", userID),
			slog.String("invoice_id", invoiceID))
		return err
	}
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.DeleteInvoice(ctx, invoiceID); err != nil {
		s.LogError(ctx, err, "Failed to delete invoice", slog.String("invoice_id", invoiceID))
		return err
	}
	s.Emit(ctx, domain.TableInvoices, domain.ActionDelete, invoiceID, inv.Date, nil)

	s.LogInfo(ctx, "Invoice deleted",
		slog.String("invoice_id", invoiceID),
		slog.String("number", inv.FullNumber()))
	return nil
}

// RenderInvoicePDF writes the printable invoice to w.
func (s *invoiceService) RenderInvoicePDF(ctx context.Context, invoiceID string, w io.Writer) (*domain.Invoice, error) {
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindClientByID(ctx, inv.ClientID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load invoice client", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	if err := report.InvoicePDF(w, s.issuer, *inv, client); err != nil {
		s.LogError(ctx, err, "Failed to render invoice PDF", slog.String("invoice_id", invoiceID))
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return inv, nil
}
