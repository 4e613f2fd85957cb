package models

import "github.com/shopspring/decimal"

// Client is a row of clienti.
type Client struct {
	ClientID      string  `db:"client_id"`
	BusinessName  string  `db:"business_name"`
	VATNumber     *string `db:"vat_number"`
	TaxCode       *string `db:"tax_code"`
	Address       string  `db:"address"`
	ZipCode       string  `db:"zip_code"`
	City          string  `db:"city"`
	Province      string  `db:"province"`
	Country       string  `db:"country"`
	Email         *string `db:"email"`
	PEC           *string `db:"pec"`
	Phone         *string `db:"phone"`
	RecipientCode *string `db:"recipient_code"`
	SplitPayment  bool    `db:"split_payment"`
	Notes         string  `db:"notes"`
	AuditFields
}

// Product is a row of prodotti.
type Product struct {
	ProductID     string          `db:"product_id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Category      string          `db:"category"`
	Price         decimal.Decimal `db:"price"`
	UnitOfMeasure string          `db:"unit_of_measure"`
	VATCode       string          `db:"vat_code"`
	VATRate       decimal.Decimal `db:"vat_rate"`
	Active        bool            `db:"active"`
	AuditFields
}
