package services

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// CardPaymentReaderSvc defines read operations for card payments
type CardPaymentReaderSvc interface {
	GetCardPayment(ctx context.Context, paymentID string) (*domain.CardPayment, error)
	ListCardPayments(ctx context.Context, params dto.ListCardPaymentsParams) (*dto.ListCardPaymentsResponse, error)
	ListCardPaymentDates(ctx context.Context) ([]string, error)
	TotalForDate(ctx context.Context, date string) (decimal.Decimal, error)
}

// CardPaymentWriterSvc defines write operations for card payments
type CardPaymentWriterSvc interface {
	CreateCardPayment(ctx context.Context, req dto.CreateCardPaymentRequest, userID string) (*domain.CardPayment, error)
	UpdateCardPayment(ctx context.Context, paymentID string, req dto.UpdateCardPaymentRequest, userID string) (*domain.CardPayment, error)
	DeleteCardPayment(ctx context.Context, paymentID string, userID string) error
}

// CardPaymentSvcFacade combines all card payment service interfaces
type CardPaymentSvcFacade interface {
	CardPaymentReaderSvc
	CardPaymentWriterSvc
}
