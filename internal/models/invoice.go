package models

import (
	"github.com/shopspring/decimal"
)

// Invoice is a row of fatture, joined with the client business name on reads.
type Invoice struct {
	InvoiceID      string           `db:"invoice_id"`
	Number         int              `db:"number"`
	Year           int              `db:"year"`
	ClientID       string           `db:"client_id"`
	ClientName     string           `db:"business_name"`
	Date           string           `db:"date"`
	Subtotal       decimal.Decimal  `db:"subtotal"`
	VAT            decimal.Decimal  `db:"vat"`
	Total          decimal.Decimal  `db:"total"`
	Status         string           `db:"status"`
	DocumentType   string           `db:"document_type"`
	FiscalRegime   string           `db:"fiscal_regime"`
	Reason         string           `db:"reason"`
	Notes          string           `db:"notes"`
	PaymentMethod  *string          `db:"payment_method"`
	PaymentDate    *string          `db:"payment_date"`
	WithholdingTax *decimal.Decimal `db:"withholding_tax"`
	PensionFund    *decimal.Decimal `db:"pension_fund"`
	RecipientCode  *string          `db:"recipient_code"`
	RecipientPEC   *string          `db:"recipient_pec"`
	AuditFields
}

// InvoiceLine is a row of righe_fatture.
type InvoiceLine struct {
	LineID          string          `db:"line_id"`
	InvoiceID       string          `db:"invoice_id"`
	Position        int             `db:"position"`
	Description     string          `db:"description"`
	Quantity        decimal.Decimal `db:"quantity"`
	UnitOfMeasure   string          `db:"unit_of_measure"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	DiscountPercent decimal.Decimal `db:"discount_percent"`
	VATRate         decimal.Decimal `db:"vat_rate"`
	VATCode         string          `db:"vat_code"`
	ProductID       *string         `db:"product_id"`
	LineTotal       decimal.Decimal `db:"line_total"`
}
