package repositories

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

// CashMovementReader defines read operations for the cash movement log
type CashMovementReader interface {
	// FindMovementsByDate returns the movements of a business date ordered by timestamp.
	FindMovementsByDate(ctx context.Context, date string) ([]domain.CashMovement, error)

	// FindRecentMovements returns the latest movements across all dates, newest first.
	FindRecentMovements(ctx context.Context, limit int) ([]domain.CashMovement, error)
}

// CashMovementWriter defines write operations for the cash movement log.
// Movements are append-only.
type CashMovementWriter interface {
	AppendMovement(ctx context.Context, movement domain.CashMovement) error
}

// CashMovementRepositoryFacade combines all cash movement repository interfaces
type CashMovementRepositoryFacade interface {
	CashMovementReader
	CashMovementWriter
}

// DailyRecordReader defines read operations for daily cash snapshots
type DailyRecordReader interface {
	// FindDailyRecord returns apperrors.ErrNotFound when no snapshot exists for date.
	FindDailyRecord(ctx context.Context, date string) (*domain.DailyCashRecord, error)

	// ListDailyRecords returns snapshots between from and to inclusive, newest first.
	// Empty bounds are open.
	ListDailyRecords(ctx context.Context, from, to string) ([]domain.DailyCashRecord, error)
}

// DailyRecordWriter defines write operations for daily cash snapshots
type DailyRecordWriter interface {
	// UpsertDailyRecord inserts or replaces the snapshot keyed by record.Date.
	UpsertDailyRecord(ctx context.Context, record domain.DailyCashRecord) error
}

// DailyRecordRepositoryFacade combines all daily record repository interfaces
type DailyRecordRepositoryFacade interface {
	DailyRecordReader
	DailyRecordWriter
}
