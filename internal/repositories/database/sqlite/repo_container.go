package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// reportingRepository serves the aggregate queries from the card and invoice tables.
type reportingRepository struct {
	cards    *cardPaymentRepository
	invoices *invoiceRepository
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func (r *reportingRepository) CardSalesByDate(ctx context.Context, from, to string) (map[string]decimal.Decimal, error) {
	return r.cards.CardSalesByDate(ctx, from, to)
}

func (r *reportingRepository) InvoiceTotalsByStatus(ctx context.Context, from, to string) (map[domain.InvoiceStatus]portsrepo.StatusTotal, error) {
	return r.invoices.InvoiceTotalsByStatus(ctx, from, to)
}

// NewRepositoryProvider wires the SQLite repositories. loc is the shop time zone
// movement timestamps are written and read in.
func NewRepositoryProvider(db *sql.DB, loc *time.Location) portsrepo.RepositoryProvider {
	base := BaseRepository{DB: db}
	cards := newCardPaymentRepository(db)
	invoices := newInvoiceRepository(db)
	return portsrepo.RepositoryProvider{
		MovementRepo:    newCashMovementRepository(db, loc),
		DailyRecordRepo: newDailyRecordRepository(db),
		CardPaymentRepo: cards,
		InvoiceRepo:     invoices,
		ClientRepo:      &clientRepository{BaseRepository: base},
		ProductRepo:     &productRepository{BaseRepository: base},
		UserRepo:        &userRepository{BaseRepository: base},
		ReportingRepo:   &reportingRepository{cards: cards, invoices: invoices},
	}
}
