package pgsql

import (
	"time"

	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL repositories. loc is the shop time zone
// used to read back wall clock timestamps.
func NewRepositoryProvider(dbPool *pgxpool.Pool, loc *time.Location) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		MovementRepo:    newPgxCashMovementRepository(dbPool, loc),
		DailyRecordRepo: newPgxDailyRecordRepository(dbPool),
		CardPaymentRepo: newPgxCardPaymentRepository(dbPool),
		InvoiceRepo:     newPgxInvoiceRepository(dbPool),
		ClientRepo:      newPgxClientRepository(dbPool),
		ProductRepo:     newPgxProductRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
		ReportingRepo:   newReportingRepository(dbPool),
	}
}
