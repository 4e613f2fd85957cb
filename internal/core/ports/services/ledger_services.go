package services

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// MovementAggregatorSvc sums the rows of one business date.
type MovementAggregatorSvc interface {
	// SumByKind sums the movements of kind on date; no rows sum to zero.
	SumByKind(ctx context.Context, date string, kind domain.MovementKind) (decimal.Decimal, error)
	// SumCardPayments sums the card payments of date; no rows sum to zero.
	SumCardPayments(ctx context.Context, date string) (decimal.Decimal, error)
}

// LedgerReaderSvc defines read operations of the cash ledger
type LedgerReaderSvc interface {
	MovementAggregatorSvc

	// ComputeDailyState returns the current state of a business day without side effects.
	// Stored figures of a closed day are authoritative; otherwise they are derived from
	// the day's movements and card payments.
	ComputeDailyState(ctx context.Context, date string) (*domain.DailyState, error)

	// ListDailyRecords returns stored snapshots between from and to, newest first.
	ListDailyRecords(ctx context.Context, from, to string) ([]domain.DailyCashRecord, error)

	// ListMovements returns the movements of date in timestamp order.
	ListMovements(ctx context.Context, date string) ([]domain.CashMovement, error)
}

// LedgerWriterSvc defines the mutating operations of the cash ledger
type LedgerWriterSvc interface {
	// OpenDay appends the opening float movement. Fails with apperrors.ErrAlreadyOpen.
	OpenDay(ctx context.Context, date string, req dto.OpenDayRequest, userID string) (*domain.DailyState, error)

	// RecordMovement appends an income or expense and refreshes the day's snapshot.
	RecordMovement(ctx context.Context, req dto.RecordMovementRequest, userID string) (*domain.CashMovement, error)

	// CloseDay stores the counted float and discrepancy and marks the day closed.
	// Closing an already closed day overwrites the previous closure.
	CloseDay(ctx context.Context, date string, req dto.CloseDayRequest, userID string) (*domain.DailyCashRecord, error)

	// ReopenDay clears the closure of a day.
	ReopenDay(ctx context.Context, date string, userID string) (*domain.DailyCashRecord, error)

	// SetOtherIncome stores the non-sale income of a day.
	SetOtherIncome(ctx context.Context, date string, req dto.SetOtherIncomeRequest, userID string) (*domain.DailyCashRecord, error)
}

// DailyRecordRefresherSvc lets other writers keep the daily snapshot in sync.
type DailyRecordRefresherSvc interface {
	// EnsureDayWritable returns apperrors.ErrDayClosed when date is closed and closed days are locked.
	EnsureDayWritable(ctx context.Context, date string) error

	// RefreshDailyRecord projects the current figures of date and upserts the snapshot.
	RefreshDailyRecord(ctx context.Context, date string) (*domain.DailyCashRecord, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	DailyRecordRefresherSvc
}
