package repositories

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

// CardPaymentReader defines read operations for card payments
type CardPaymentReader interface {
	FindCardPaymentByID(ctx context.Context, paymentID string) (*domain.CardPayment, error)

	// ListCardPayments returns payments matching filter ordered by date desc, created_at desc.
	ListCardPayments(ctx context.Context, filter domain.CardPaymentFilter) ([]domain.CardPayment, error)

	// ListCardPaymentDates returns the distinct dates having payments, newest first.
	ListCardPaymentDates(ctx context.Context) ([]string, error)
}

// CardPaymentWriter defines write operations for card payments
type CardPaymentWriter interface {
	SaveCardPayment(ctx context.Context, payment domain.CardPayment) error
	UpdateCardPayment(ctx context.Context, payment domain.CardPayment) error
	DeleteCardPayment(ctx context.Context, paymentID string) error
}

// CardPaymentRepositoryFacade combines all card payment repository interfaces
type CardPaymentRepositoryFacade interface {
	CardPaymentReader
	CardPaymentWriter
}
