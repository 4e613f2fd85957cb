package dto

import (
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one line of an invoice being created or edited.
type InvoiceLineRequest struct {
	Description     string          `json:"description" binding:"required,max=500"`
	Quantity        decimal.Decimal `json:"quantity" binding:"gte=0"`
	UnitOfMeasure   string          `json:"unitOfMeasure" binding:"max=20"`
	UnitPrice       decimal.Decimal `json:"unitPrice" binding:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discountPercent" binding:"gte=0,lte=100"`
	VATCode         string          `json:"vatCode" binding:"required"`
	// Overrides the rate of VATCode when set.
	VATRate   *decimal.Decimal `json:"vatRate" binding:"omitempty,gte=0,lte=100"`
	ProductID *string          `json:"productID"`
}

// CreateInvoiceRequest creates a draft invoice; the number is assigned by the server.
type CreateInvoiceRequest struct {
	ClientID       string               `json:"clientID" binding:"required"`
	Date           string               `json:"date" binding:"required,datekey"`
	Lines          []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
	DocumentType   string               `json:"documentType" binding:"omitempty,oneof=TD01 TD02 TD03 TD04 TD05 TD06"`
	FiscalRegime   string               `json:"fiscalRegime" binding:"omitempty,oneof=RF01 RF02 RF04 RF05 RF19"`
	Reason         string               `json:"reason" binding:"max=500"`
	Notes          string               `json:"notes" binding:"max=2000"`
	PaymentMethod  *string              `json:"paymentMethod" binding:"omitempty,max=50"`
	WithholdingTax *decimal.Decimal     `json:"withholdingTax" binding:"omitempty,gte=0"`
	PensionFund    *decimal.Decimal     `json:"pensionFund" binding:"omitempty,gte=0"`
	RecipientCode  *string              `json:"recipientCode" binding:"omitempty,len=7"`
	RecipientPEC   *string              `json:"recipientPEC" binding:"omitempty,email"`
}

// UpdateInvoiceRequest edits an invoice. Nil fields are left unchanged; Lines may only change on drafts.
type UpdateInvoiceRequest struct {
	ClientID       *string              `json:"clientID"`
	Date           *string              `json:"date" binding:"omitempty,datekey"`
	Lines          []InvoiceLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
	DocumentType   *string              `json:"documentType" binding:"omitempty,oneof=TD01 TD02 TD03 TD04 TD05 TD06"`
	FiscalRegime   *string              `json:"fiscalRegime" binding:"omitempty,oneof=RF01 RF02 RF04 RF05 RF19"`
	Reason         *string              `json:"reason" binding:"omitempty,max=500"`
	Notes          *string              `json:"notes" binding:"omitempty,max=2000"`
	PaymentMethod  *string              `json:"paymentMethod" binding:"omitempty,max=50"`
	WithholdingTax *decimal.Decimal     `json:"withholdingTax" binding:"omitempty,gte=0"`
	PensionFund    *decimal.Decimal     `json:"pensionFund" binding:"omitempty,gte=0"`
	RecipientCode  *string              `json:"recipientCode" binding:"omitempty,len=7"`
	RecipientPEC   *string              `json:"recipientPEC" binding:"omitempty,email"`
}

// ChangeInvoiceStatusRequest moves an invoice through its lifecycle.
type ChangeInvoiceStatusRequest struct {
	Status        domain.InvoiceStatus `json:"status" binding:"required,oneof=draft issued sent paid void"`
	PaymentDate   *string              `json:"paymentDate" binding:"omitempty,datekey"`
	PaymentMethod *string              `json:"paymentMethod" binding:"omitempty,max=50"`
}

// ListInvoicesParams defines query parameters for listing invoices.
type ListInvoicesParams struct {
	Year     int                  `form:"year" binding:"omitempty,min=2000,max=2100"`
	Month    int                  `form:"month" binding:"omitempty,min=1,max=12"`
	Status   domain.InvoiceStatus `form:"status" binding:"omitempty,oneof=draft issued sent paid void"`
	ClientID string               `form:"clientID"`
	Page     int                  `form:"page,default=1"`
	PerPage  int                  `form:"perPage,default=20"`
}

// ListInvoicesResponse is one page of invoices.
type ListInvoicesResponse struct {
	Invoices   []domain.Invoice `json:"invoices"`
	Pagination pagination.Page  `json:"pagination"`
}

// PreviewTotalsRequest asks for the totals of lines without saving anything.
type PreviewTotalsRequest struct {
	Lines []InvoiceLineRequest `json:"lines" binding:"required,dive"`
}

// InvoiceTotalsResponse carries computed totals.
type InvoiceTotalsResponse struct {
	LineTotals []decimal.Decimal `json:"lineTotals"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	VAT        decimal.Decimal   `json:"vat"`
	Total      decimal.Decimal   `json:"total"`
}

// NextNumberResponse previews the next invoice number of a year.
type NextNumberResponse struct {
	Year   int `json:"year"`
	Number int `json:"number"`
}

// PeriodsResponse lists the year/months having invoices.
type PeriodsResponse struct {
	Periods []domain.InvoicePeriod `json:"periods"`
}
