package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// movementAggregator sums the movements and card payments of a single business date.
type movementAggregator struct {
	BaseService
	movementRepo portsrepo.CashMovementReader
	cardRepo     portsrepo.CardPaymentReader
}

// NewMovementAggregator creates the read-only projection over movements and card payments.
func NewMovementAggregator(movementRepo portsrepo.CashMovementReader, cardRepo portsrepo.CardPaymentReader) portssvc.MovementAggregatorSvc {
	return newMovementAggregator(movementRepo, cardRepo)
}

func newMovementAggregator(movementRepo portsrepo.CashMovementReader, cardRepo portsrepo.CardPaymentReader) *movementAggregator {
	return &movementAggregator{movementRepo: movementRepo, cardRepo: cardRepo}
}

var _ portssvc.MovementAggregatorSvc = (*movementAggregator)(nil)

func (a *movementAggregator) movements(ctx context.Context, date string) ([]domain.CashMovement, error) {
	movements, err := a.movementRepo.FindMovementsByDate(ctx, date)
	if err != nil {
		a.LogError(ctx, err, "Failed to load movements", slog.String("date", date))
		return nil, fmt.Errorf("failed to load movements for %s: %w", date, err)
	}
	return movements, nil
}

func (a *movementAggregator) cardPayments(ctx context.Context, date string) ([]domain.CardPayment, error) {
	payments, err := a.cardRepo.ListCardPayments(ctx, domain.CardPaymentFilter{Date: date})
	if err != nil {
		a.LogError(ctx, err, "Failed to load card payments", slog.String("date", date))
		return nil, fmt.Errorf("failed to load card payments for %s: %w", date, err)
	}
	return payments, nil
}

// SumByKind sums the movements of kind recorded on date.
func (a *movementAggregator) SumByKind(ctx context.Context, date string, kind domain.MovementKind) (decimal.Decimal, error) {
	if err := domain.ValidateDate(date); err != nil {
		return decimal.Zero, err
	}
	if !kind.IsValid() {
		return decimal.Zero, fmt.Errorf("%w: unknown movement kind %q", apperrors.ErrValidation, kind)
	}
	movements, err := a.movements(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	return accounting.SumMovements(movements, kind), nil
}

// SumCardPayments sums the card payments of date.
func (a *movementAggregator) SumCardPayments(ctx context.Context, date string) (decimal.Decimal, error) {
	if err := domain.ValidateDate(date); err != nil {
		return decimal.Zero, err
	}
	payments, err := a.cardPayments(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	return accounting.SumCardPayments(payments), nil
}
