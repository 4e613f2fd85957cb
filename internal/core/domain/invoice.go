package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceIssued InvoiceStatus = "issued"
	InvoiceSent   InvoiceStatus = "sent"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoid   InvoiceStatus = "void"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:  {InvoiceIssued, InvoiceVoid},
	InvoiceIssued: {InvoiceSent, InvoicePaid, InvoiceVoid},
	InvoiceSent:   {InvoicePaid, InvoiceVoid},
}

// IsValid reports whether s is a known status.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceDraft, InvoiceIssued, InvoiceSent, InvoicePaid, InvoiceVoid:
		return true
	}
	return false
}

// CanTransitionTo reports whether an invoice in status s may move to next.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOutstanding reports whether the invoice has been issued but not paid.
func (s InvoiceStatus) IsOutstanding() bool {
	return s == InvoiceIssued || s == InvoiceSent
}

// InvoiceLine is a single priced row of an invoice.
type InvoiceLine struct {
	LineID          string          `json:"lineID"`
	InvoiceID       string          `json:"invoiceID"`
	Position        int             `json:"position"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitOfMeasure   string          `json:"unitOfMeasure"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	VATRate         decimal.Decimal `json:"vatRate"`
	VATCode         string          `json:"vatCode"`
	ProductID       *string         `json:"productID,omitempty"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
}

// Invoice is an Italian sales invoice with its lines.
type Invoice struct {
	InvoiceID      string           `json:"invoiceID"`
	Number         int              `json:"number"`
	Year           int              `json:"year"`
	ClientID       string           `json:"clientID"`
	ClientName     string           `json:"clientName,omitempty"`
	Date           string           `json:"date"`
	Lines          []InvoiceLine    `json:"lines"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	VAT            decimal.Decimal  `json:"vat"`
	Total          decimal.Decimal  `json:"total"`
	Status         InvoiceStatus    `json:"status"`
	DocumentType   string           `json:"documentType"`
	FiscalRegime   string           `json:"fiscalRegime"`
	Reason         string           `json:"reason,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	PaymentMethod  *string          `json:"paymentMethod,omitempty"`
	PaymentDate    *string          `json:"paymentDate,omitempty"`
	WithholdingTax *decimal.Decimal `json:"withholdingTax,omitempty"`
	PensionFund    *decimal.Decimal `json:"pensionFund,omitempty"`
	RecipientCode  *string          `json:"recipientCode,omitempty"`
	RecipientPEC   *string          `json:"recipientPEC,omitempty"`
	AuditFields
}

// FullNumber renders the invoice number as "N/YYYY".
func (i Invoice) FullNumber() string {
	return strconv.Itoa(i.Number) + "/" + strconv.Itoa(i.Year)
}

// InvoiceFilter selects invoices for listing.
type InvoiceFilter struct {
	Year     int
	Month    int
	Status   InvoiceStatus
	ClientID string
	Limit    int
	Offset   int
}

// InvoicePeriod is a year/month for which invoices exist.
type InvoicePeriod struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// InvoiceStats summarises invoicing for a year. Void invoices are left out.
type InvoiceStats struct {
	Year              int             `json:"year"`
	Count             int             `json:"count"`
	TotalInvoiced     decimal.Decimal `json:"totalInvoiced"`
	PaidCount         int             `json:"paidCount"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	OutstandingCount  int             `json:"outstandingCount"`
	TotalOutstanding  decimal.Decimal `json:"totalOutstanding"`
	CurrentMonthCount int             `json:"currentMonthCount"`
	CurrentMonth      decimal.Decimal `json:"currentMonth"`
	GeneratedAt       time.Time       `json:"generatedAt"`
}
