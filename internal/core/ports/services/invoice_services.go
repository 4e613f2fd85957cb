package services

import (
	"context"
	"io"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/dto"
)

// InvoiceReaderSvc defines read operations for invoices
type InvoiceReaderSvc interface {
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error)
	NextInvoiceNumber(ctx context.Context, year int) (int, error)
	InvoiceStats(ctx context.Context, year int) (*domain.InvoiceStats, error)
	AvailablePeriods(ctx context.Context) ([]domain.InvoicePeriod, error)
	PreviewTotals(ctx context.Context, req dto.PreviewTotalsRequest) (*dto.InvoiceTotalsResponse, error)
	RenderInvoicePDF(ctx context.Context, invoiceID string, w io.Writer) (*domain.Invoice, error)
}

// InvoiceWriterSvc defines write operations for invoices
type InvoiceWriterSvc interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error)
	ChangeInvoiceStatus(ctx context.Context, invoiceID string, req dto.ChangeInvoiceStatusRequest, userID string) (*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, invoiceID string, userID string) error
}

// InvoiceSvcFacade combines all invoice service interfaces
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
}

// ClientSvcFacade defines operations on invoice recipients
type ClientSvcFacade interface {
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
	ListClients(ctx context.Context, search string) ([]domain.Client, error)
	CreateClient(ctx context.Context, req dto.CreateClientRequest, userID string) (*domain.Client, error)
	UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest, userID string) (*domain.Client, error)
	DeleteClient(ctx context.Context, clientID string, userID string) error
}
