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
	"github.com/gestionale-jos/jos_backend/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cardPaymentService implements the CardPaymentSvcFacade interface.
// Every write refreshes the daily record of the affected dates.
type cardPaymentService struct {
	BaseService
	repo   portsrepo.CardPaymentRepositoryFacade
	ledger portssvc.DailyRecordRefresherSvc
	now    func() time.Time
}

// CardPaymentServiceOption is a functional option for configuring the card payment service
type CardPaymentServiceOption func(*cardPaymentService)

// WithCardPaymentEvents sets the publisher notified after every write.
func WithCardPaymentEvents(publisher portssvc.EventPublisher) CardPaymentServiceOption {
	return func(s *cardPaymentService) {
		s.Events = publisher
	}
}

// NewCardPaymentService creates a new card payment service
func NewCardPaymentService(repo portsrepo.CardPaymentRepositoryFacade, ledger portssvc.DailyRecordRefresherSvc, options ...CardPaymentServiceOption) portssvc.CardPaymentSvcFacade {
	svc := &cardPaymentService{
		repo:   repo,
		ledger: ledger,
		now:    time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CardPaymentSvcFacade = (*cardPaymentService)(nil)

func (s *cardPaymentService) GetCardPayment(ctx context.Context, paymentID string) (*domain.CardPayment, error) {
	payment, err := s.repo.FindCardPaymentByID(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find card payment", slog.String("payment_id", paymentID))
		}
		return nil, err
	}
	return payment, nil
}

// ListCardPayments returns one page of payments ordered by date desc, creation desc, id desc.
func (s *cardPaymentService) ListCardPayments(ctx context.Context, params dto.ListCardPaymentsParams) (*dto.ListCardPaymentsResponse, error) {
	for _, date := range []string{params.Date, params.From, params.To} {
		if date == "" {
			continue
		}
		if err := domain.ValidateDate(date); err != nil {
			return nil, err
		}
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	filter := domain.CardPaymentFilter{
		Date:  params.Date,
		From:  params.From,
		To:    params.To,
		Limit: limit + 1,
	}
	if params.NextToken != nil && *params.NextToken != "" {
		cursor, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		filter.AfterDate = cursor.Date
		filter.AfterCreatedAt = &cursor.CreatedAt
		filter.AfterPaymentID = cursor.ID
	}

	payments, err := s.repo.ListCardPayments(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list card payments",
			slog.String("date", params.Date),
			slog.String("from", params.From),
			slog.String("to", params.To))
		return nil, fmt.Errorf("failed to list card payments: %w", err)
	}

	resp := &dto.ListCardPaymentsResponse{Payments: []domain.CardPayment{}}
	if len(payments) > limit {
		payments = payments[:limit]
		last := payments[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.PaymentID})
		resp.NextToken = &token
	}
	if payments != nil {
		resp.Payments = payments
	}
	resp.PageTotal = accounting.SumCardPayments(payments)
	return resp, nil
}

func (s *cardPaymentService) ListCardPaymentDates(ctx context.Context) ([]string, error) {
	dates, err := s.repo.ListCardPaymentDates(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list card payment dates")
		return nil, fmt.Errorf("failed to list card payment dates: %w", err)
	}
	if dates == nil {
		return []string{}, nil
	}
	return dates, nil
}

// TotalForDate sums the card payments of date.
func (s *cardPaymentService) TotalForDate(ctx context.Context, date string) (decimal.Decimal, error) {
	if err := domain.ValidateDate(date); err != nil {
		return decimal.Zero, err
	}
	payments, err := s.repo.ListCardPayments(ctx, domain.CardPaymentFilter{Date: date})
	if err != nil {
		s.LogError(ctx, err, "Failed to sum card payments", slog.String("date", date))
		return decimal.Zero, fmt.Errorf("failed to sum card payments for %s: %w", date, err)
	}
	return accounting.SumCardPayments(payments), nil
}

// refresh keeps the daily records in sync after a committed write.
func (s *cardPaymentService) refresh(ctx context.Context, dates ...string) {
	seen := make(map[string]bool, len(dates))
	for _, date := range dates {
		if seen[date] {
			continue
		}
		seen[date] = true
		if _, err := s.ledger.RefreshDailyRecord(ctx, date); err != nil {
			s.LogError(ctx, err, "Daily record left stale after card payment change", slog.String("date", date))
		}
	}
}

func (s *cardPaymentService) CreateCardPayment(ctx context.Context, req dto.CreateCardPaymentRequest, userID string) (*domain.CardPayment, error) {
	if err := domain.ValidateDate(req.Date); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}
	if err := s.ledger.EnsureDayWritable(ctx, req.Date); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	payment := domain.CardPayment{
		PaymentID:   uuid.NewString(),
		Date:        req.Date,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Note:        strings.TrimSpace(req.Note),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.repo.SaveCardPayment(ctx, payment); err != nil {
		s.LogError(ctx, err, "Failed to save card payment", slog.String("date", payment.Date))
		return nil, fmt.Errorf("failed to save card payment: %w", err)
	}
	s.Emit(ctx, domain.TableCardPayments, domain.ActionInsert, payment.PaymentID, payment.Date, payment)
	s.refresh(ctx, payment.Date)

	s.LogInfo(ctx, "Card payment created",
		slog.String("payment_id", payment.PaymentID),
		slog.String("date", payment.Date))
	return &payment, nil
}

func (s *cardPaymentService) UpdateCardPayment(ctx context.Context, paymentID string, req dto.UpdateCardPaymentRequest, userID string) (*domain.CardPayment, error) {
	payment, err := s.GetCardPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	oldDate := payment.Date

	if req.Date != nil {
		if err := domain.ValidateDate(*req.Date); err != nil {
			return nil, err
		}
		payment.Date = *req.Date
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
		}
		payment.Amount = *req.Amount
	}
	if req.Description != nil {
		payment.Description = strings.TrimSpace(*req.Description)
	}
	if req.Note != nil {
		payment.Note = strings.TrimSpace(*req.Note)
	}

	if err := s.ledger.EnsureDayWritable(ctx, oldDate); err != nil {
		return nil, err
	}
	if payment.Date != oldDate {
		if err := s.ledger.EnsureDayWritable(ctx, payment.Date); err != nil {
			return nil, err
		}
	}

	payment.LastUpdatedAt = s.now().UTC()
	payment.LastUpdatedBy = userID
	if err := s.repo.UpdateCardPayment(ctx, *payment); err != nil {
		s.LogError(ctx, err, "Failed to update card payment", slog.String("payment_id", paymentID))
		return nil, err
	}
	s.Emit(ctx, domain.TableCardPayments, domain.ActionUpdate, payment.PaymentID, payment.Date, payment)
	s.refresh(ctx, oldDate, payment.Date)

	s.LogInfo(ctx, "Card payment updated", slog.String("payment_id", paymentID))
	return payment, nil
}

func (s *cardPaymentService) DeleteCardPayment(ctx context.Context, paymentID string, userID string) error {
	payment, err := s.GetCardPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if err := s.ledger.EnsureDayWritable(ctx, payment.Date); err != nil {
		return err
	}
	if err := s.repo.DeleteCardPayment(ctx, paymentID); err != nil {
		s.LogError(ctx, err, "Failed to delete card payment", slog.String("payment_id", paymentID))
		return err
	}
	s.Emit(ctx, domain.TableCardPayments, domain.ActionDelete, paymentID, payment.Date, nil)
	s.refresh(ctx, payment.Date)

	s.LogInfo(ctx, "Card payment deleted",
		slog.String("payment_id", paymentID),
		slog.String("user_id", userID))
	return nil
}
