package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ledgerService implements the LedgerSvcFacade interface.
// Movements are an append-only log; the daily record is a projection of it
// that is recomputed and upserted after every write.
type ledgerService struct {
	*movementAggregator
	dailyRepo           portsrepo.DailyRecordRepositoryFacade
	movementWriter      portsrepo.CashMovementWriter
	loc                 *time.Location
	lockClosedDays      bool
	defaultOpeningFloat decimal.Decimal
	now                 func() time.Time
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerLocation sets the shop timezone used to derive business dates.
func WithLedgerLocation(loc *time.Location) LedgerServiceOption {
	return func(s *ledgerService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClosedDayLock toggles rejection of writes on closed days.
func WithClosedDayLock(lock bool) LedgerServiceOption {
	return func(s *ledgerService) {
		s.lockClosedDays = lock
	}
}

// WithDefaultOpeningFloat sets the float used when OpenDay gets none.
func WithDefaultOpeningFloat(amount decimal.Decimal) LedgerServiceOption {
	return func(s *ledgerService) {
		s.defaultOpeningFloat = amount
	}
}

// WithLedgerRoleAuthorizer sets the role authorizer for the ledger service.
func WithLedgerRoleAuthorizer(authorizer portssvc.UserRoleAuthorizerSvc) LedgerServiceOption {
	return func(s *ledgerService) {
		s.RoleAuthorizer = authorizer
	}
}

// WithLedgerEvents sets the publisher notified after every ledger write.
func WithLedgerEvents(publisher portssvc.EventPublisher) LedgerServiceOption {
	return func(s *ledgerService) {
		s.Events = publisher
	}
}

// WithLedgerClock overrides the clock, for tests.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger service with the provided options
func NewLedgerService(
	movementRepo portsrepo.CashMovementRepositoryFacade,
	dailyRepo portsrepo.DailyRecordRepositoryFacade,
	cardRepo portsrepo.CardPaymentReader,
	options ...LedgerServiceOption,
) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		movementAggregator:  newMovementAggregator(movementRepo, cardRepo),
		dailyRepo:           dailyRepo,
		movementWriter:      movementRepo,
		loc:                 time.Local,
		lockClosedDays:      true,
		defaultOpeningFloat: decimal.NewFromInt(200),
		now:                 time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure ledgerService implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// dayData is everything stored about one business date.
type dayData struct {
	stored    *domain.DailyCashRecord
	movements []domain.CashMovement
	payments  []domain.CardPayment
}

func (d dayData) opened() bool {
	return accounting.HasOpening(d.movements) || (d.stored != nil && d.stored.Closed)
}

func (s *ledgerService) findStored(ctx context.Context, date string) (*domain.DailyCashRecord, error) {
	rec, err := s.dailyRepo.FindDailyRecord(ctx, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		s.LogError(ctx, err, "Failed to load daily record", slog.String("date", date))
		return nil, fmt.Errorf("failed to load daily record for %s: %w", date, err)
	}
	return rec, nil
}

// loadDay reads the stored record, the movements and the card payments of date concurrently.
func (s *ledgerService) loadDay(ctx context.Context, date string) (dayData, error) {
	var d dayData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.stored, err = s.findStored(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		d.movements, err = s.movements(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		d.payments, err = s.cardPayments(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return dayData{}, err
	}
	return d, nil
}

func (s *ledgerService) project(date string, d dayData) domain.DailyCashRecord {
	rec := accounting.ProjectDailyRecord(date, d.movements, d.payments, d.stored)
	rec.UpdatedAt = s.now().UTC()
	return rec
}

func (s *ledgerService) upsert(ctx context.Context, rec domain.DailyCashRecord, action domain.ChangeAction) error {
	if err := s.dailyRepo.UpsertDailyRecord(ctx, rec); err != nil {
		s.LogError(ctx, err, "Failed to upsert daily record", slog.String("date", rec.Date))
		return fmt.Errorf("failed to save daily record for %s: %w", rec.Date, err)
	}
	s.Emit(ctx, domain.TableDailyRecords, action, rec.Date, rec.Date, rec)
	return nil
}

func upsertAction(stored *domain.DailyCashRecord) domain.ChangeAction {
	if stored == nil {
		return domain.ActionInsert
	}
	return domain.ActionUpdate
}

// ComputeDailyState returns the current view of date without side effects.
func (s *ledgerService) ComputeDailyState(ctx context.Context, date string) (*domain.DailyState, error) {
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	d, err := s.loadDay(ctx, date)
	if err != nil {
		return nil, err
	}

	var rec domain.DailyCashRecord
	if d.stored != nil && d.stored.Closed {
		rec = *d.stored
	} else {
		rec = accounting.ProjectDailyRecord(date, d.movements, d.payments, d.stored)
		if d.stored != nil {
			rec.UpdatedAt = d.stored.UpdatedAt
		}
	}

	movements := d.movements
	if movements == nil {
		movements = []domain.CashMovement{}
	}
	return &domain.DailyState{
		DailyCashRecord: rec,
		Opened:          d.opened(),
		Movements:       movements,
	}, nil
}

// EnsureDayWritable rejects writes on closed days when the lock is on.
func (s *ledgerService) EnsureDayWritable(ctx context.Context, date string) error {
	if !s.lockClosedDays {
		return nil
	}
	stored, err := s.findStored(ctx, date)
	if err != nil {
		return err
	}
	if stored != nil && stored.Closed {
		s.LogDebug(ctx, "Write rejected on closed day", slog.String("date", date))
		return fmt.Errorf("%w: %s", apperrors.ErrDayClosed, date)
	}
	return nil
}

// RefreshDailyRecord projects the figures of date from its movements and card payments and stores them.
// On a closed day (lock off) the closure fields are kept as they were.
func (s *ledgerService) RefreshDailyRecord(ctx context.Context, date string) (*domain.DailyCashRecord, error) {
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	d, err := s.loadDay(ctx, date)
	if err != nil {
		return nil, err
	}
	rec := s.project(date, d)
	if err := s.upsert(ctx, rec, upsertAction(d.stored)); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *ledgerService) appendMovement(ctx context.Context, movement domain.CashMovement) error {
	if err := s.movementWriter.AppendMovement(ctx, movement); err != nil {
		s.LogError(ctx, err, "Failed to append movement",
			slog.String("date", movement.Date),
			slog.String("kind", string(movement.Kind)))
		return fmt.Errorf("failed to record movement: %w", err)
	}
	s.Emit(ctx, domain.TableCashMovements, domain.ActionInsert, movement.MovementID, movement.Date, movement)
	return nil
}

// refreshAfterAppend keeps the snapshot in sync after a committed append.
// The movement stays recorded when this fails; the next refresh repairs the snapshot.
func (s *ledgerService) refreshAfterAppend(ctx context.Context, date string) {
	if _, err := s.RefreshDailyRecord(ctx, date); err != nil {
		s.LogError(ctx, err, "Daily record left stale after movement", slog.String("date", date))
	}
}

func operatorOf(userID string) string {
	if userID == "" {
		return domain.SystemOperator
	}
	return userID
}

// OpenDay records the opening float of date.
func (s *ledgerService) OpenDay(ctx context.Context, date string, req dto.OpenDayRequest, userID string) (*domain.DailyState, error) {
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	amount := s.defaultOpeningFloat
	if req.OpeningFloat != nil {
		amount = *req.OpeningFloat
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: opening float must not be negative", apperrors.ErrValidation)
	}
	if err := s.EnsureDayWritable(ctx, date); err != nil {
		return nil, err
	}

	movements, err := s.movements(ctx, date)
	if err != nil {
		return nil, err
	}
	if accounting.HasOpening(movements) {
		s.LogDebug(ctx, "Day already open", slog.String("date", date))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAlreadyOpen, date)
	}

	ts, err := time.ParseInLocation(domain.TimestampLayout, date+" "+domain.OpeningMovementTime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	movement := domain.CashMovement{
		MovementID:  uuid.NewString(),
		Date:        date,
		Kind:        domain.MovementOpeningFloat,
		Amount:      amount,
		Description: domain.OpeningMovementDescription,
		Timestamp:   ts,
		Operator:    operatorOf(userID),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.appendMovement(ctx, movement); err != nil {
		return nil, err
	}
	s.refreshAfterAppend(ctx, date)

	s.LogInfo(ctx, "Day opened",
		slog.String("date", date),
		slog.String("opening_float", amount.StringFixed(2)))
	return s.ComputeDailyState(ctx, date)
}

// RecordMovement appends an income or expense and refreshes the day.
func (s *ledgerService) RecordMovement(ctx context.Context, req dto.RecordMovementRequest, userID string) (*domain.CashMovement, error) {
	if !req.Kind.IsManual() {
		return nil, fmt.Errorf("%w: movement kind must be income or expense", apperrors.ErrValidation)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}

	ts := s.now().In(s.loc).Truncate(time.Second)
	if req.Timestamp != nil {
		parsed, err := time.ParseInLocation(domain.TimestampLayout, *req.Timestamp, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timestamp %q, expected YYYY-MM-DD HH:MM:SS", apperrors.ErrValidation, *req.Timestamp)
		}
		ts = parsed
	}
	date := domain.DateOf(ts, s.loc)

	if err := s.EnsureDayWritable(ctx, date); err != nil {
		return nil, err
	}

	movement := domain.CashMovement{
		MovementID:  uuid.NewString(),
		Date:        date,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: description,
		Category:    strings.TrimSpace(req.Category),
		Timestamp:   ts,
		Operator:    operatorOf(userID),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.appendMovement(ctx, movement); err != nil {
		return nil, err
	}
	s.refreshAfterAppend(ctx, date)

	s.LogInfo(ctx, "Movement recorded",
		slog.String("movement_id", movement.MovementID),
		slog.String("date", date),
		slog.String("kind", string(movement.Kind)))
	return &movement, nil
}

// CloseDay stores the counted float of date. Re-closing a closed day requires admin.
func (s *ledgerService) CloseDay(ctx context.Context, date string, req dto.CloseDayRequest, userID string) (*domain.DailyCashRecord, error) {
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	if req.ActualFloat.IsNegative() {
		return nil, fmt.Errorf("%w: actual float must not be negative", apperrors.ErrValidation)
	}
	d, err := s.loadDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if d.stored != nil && d.stored.Closed {
		if err := s.AuthorizeUser(ctx, userID, domain.RoleAdmin); err != nil {
			s.LogError(ctx, err, "User not authorized to re-close day",
				slog.String("user_id", userID),
				slog.String("date", date))
			return nil, err
		}
	}

	rec := s.project(date, d)
	actual := req.ActualFloat
	discrepancy := accounting.Discrepancy(actual, rec.TheoreticalFloat)
	closedAt := rec.UpdatedAt
	closedBy := operatorOf(userID)
	rec.Closed = true
	rec.ActualFloat = &actual
	rec.Discrepancy = &discrepancy
	rec.Note = strings.TrimSpace(req.Note)
	rec.ClosedAt = &closedAt
	rec.ClosedBy = &closedBy

	if err := s.upsert(ctx, rec, upsertAction(d.stored)); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Day closed",
		slog.String("date", date),
		slog.String("theoretical_float", rec.TheoreticalFloat.StringFixed(2)),
		slog.String("discrepancy", discrepancy.StringFixed(2)))
	return &rec, nil
}

// ReopenDay clears the closure of date so that it accepts writes again.
func (s *ledgerService) ReopenDay(ctx context.Context, date string, userID string) (*domain.DailyCashRecord, error) {
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	if err := s.AuthorizeUser(ctx, userID, domain.RoleAdmin); err != nil {
		s.LogError(ctx, err, "User not authorized to reopen day",
			slog.String("user_id", userID),
			slog.String("date", date))
		return nil, err
	}
	d, err := s.loadDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if d.stored == nil {
		return nil, fmt.Errorf("%w: no daily record for %s", apperrors.ErrNotFound, date)
	}
	if !d.stored.Closed {
		return nil, fmt.Errorf("%w: day %s is not closed", apperrors.ErrInvalidTransition, date)
	}

	rec := s.project(date, d)
	rec.Closed = false
	rec.ActualFloat = nil
	rec.Discrepancy = nil
	rec.ClosedAt = nil
	rec.ClosedBy = nil
	if err := s.upsert(ctx, rec, domain.ActionUpdate); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Day reopened", slog.String("date", date), slog.String("user_id", userID))
	return &rec, nil
}

// SetOtherIncome stores the non-sale income of date.
func (s *ledgerService) SetOtherIncome(ctx context.Context, date string, req dto.SetOtherIncomeRequest, userID string) (*domain.DailyCashRecord, error) {
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: other income must not be negative", apperrors.ErrValidation)
	}
	if err := s.EnsureDayWritable(ctx, date); err != nil {
		return nil, err
	}
	d, err := s.loadDay(ctx, date)
	if err != nil {
		return nil, err
	}
	action := upsertAction(d.stored)
	base := domain.DailyCashRecord{Date: date}
	if d.stored != nil {
		base = *d.stored
	}
	base.OtherIncome = req.Amount
	d.stored = &base

	rec := s.project(date, d)
	if err := s.upsert(ctx, rec, action); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Other income set",
		slog.String("date", date),
		slog.String("amount", req.Amount.StringFixed(2)),
		slog.String("user_id", userID))
	return &rec, nil
}

// ListDailyRecords returns the stored snapshots between from and to, newest first.
func (s *ledgerService) ListDailyRecords(ctx context.Context, from, to string) ([]domain.DailyCashRecord, error) {
	for _, date := range []string{from, to} {
		if date == "" {
			continue
		}
		if err := domain.ValidateDate(date); err != nil {
			return nil, err
		}
	}
	if from != "" && to != "" && from > to {
		return nil, fmt.Errorf("%w: from %s is after to %s", apperrors.ErrValidation, from, to)
	}
	records, err := s.dailyRepo.ListDailyRecords(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list daily records",
			slog.String("from", from),
			slog.String("to", to))
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	if records == nil {
		return []domain.DailyCashRecord{}, nil
	}
	return records, nil
}

// ListMovements returns the movements of date in timestamp order.
func (s *ledgerService) ListMovements(ctx context.Context, date string) ([]domain.CashMovement, error) {
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	movements, err := s.movements(ctx, date)
	if err != nil {
		return nil, err
	}
	if movements == nil {
		return []domain.CashMovement{}, nil
	}
	return movements, nil
}
