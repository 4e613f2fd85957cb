package repositories

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatusTotal is the count and amount of invoices in one status.
type StatusTotal struct {
	Count int
	Total decimal.Decimal
}

// ReportingRepository defines aggregate queries used by reports and the dashboard
type ReportingRepository interface {
	// CardSalesByDate sums card payments per date between from and to inclusive.
	CardSalesByDate(ctx context.Context, from, to string) (map[string]decimal.Decimal, error)

	// InvoiceTotalsByStatus sums invoice totals per status for invoices dated between from and to inclusive.
	InvoiceTotalsByStatus(ctx context.Context, from, to string) (map[domain.InvoiceStatus]StatusTotal, error)
}
