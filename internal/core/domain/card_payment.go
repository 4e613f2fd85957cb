package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardPayment is a POS card payment, settled outside the cash drawer.
type CardPayment struct {
	PaymentID   string          `json:"paymentID"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Note        string          `json:"note,omitempty"`
	AuditFields
}

// CardPaymentFilter selects card payments. Date takes precedence over From/To.
type CardPaymentFilter struct {
	Date string
	From string
	To   string

	Limit int // <= 0 returns every match
	// Keyset position, exclusive: rows strictly after (AfterDate, AfterCreatedAt,
	// AfterPaymentID) in (date desc, created_at desc, payment_id desc) order.
	AfterDate      string
	AfterCreatedAt *time.Time
	AfterPaymentID string
}
