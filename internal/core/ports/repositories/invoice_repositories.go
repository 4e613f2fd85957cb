package repositories

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

// InvoiceReader defines read operations for invoices
type InvoiceReader interface {
	// FindInvoiceByID returns the invoice with its lines and the client name.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices returns invoices without lines ordered by year desc, number desc,
	// plus the total number of matches ignoring Limit/Offset.
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error)

	// ListInvoiceDates returns the date of every invoice.
	ListInvoiceDates(ctx context.Context) ([]string, error)

	// NextInvoiceNumber previews the number the next invoice of year would get.
	NextInvoiceNumber(ctx context.Context, year int) (int, error)
}

// InvoiceWriter defines write operations for invoices
type InvoiceWriter interface {
	// CreateInvoice assigns the next number of invoice.Year and stores the invoice
	// with its lines in one transaction. The per-year counter only moves forward,
	// so numbers are never reused. Returns the assigned number.
	CreateInvoice(ctx context.Context, invoice domain.Invoice) (int, error)

	// UpdateInvoice updates the header and, when replaceLines is set, replaces all lines.
	UpdateInvoice(ctx context.Context, invoice domain.Invoice, replaceLines bool) error

	DeleteInvoice(ctx context.Context, invoiceID string) error
}

// InvoiceRepositoryFacade combines all invoice repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}

// ClientReader defines read operations for clients
type ClientReader interface {
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// ListClients returns clients ordered by business name; search matches name, VAT number or tax code.
	ListClients(ctx context.Context, search string) ([]domain.Client, error)
}

// ClientWriter defines write operations for clients
type ClientWriter interface {
	SaveClient(ctx context.Context, client domain.Client) error
	UpdateClient(ctx context.Context, client domain.Client) error
	DeleteClient(ctx context.Context, clientID string) error
}

// ClientRepositoryFacade combines all client repository interfaces
type ClientRepositoryFacade interface {
	ClientReader
	ClientWriter
}
