package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashMovement is a row of movimenti_contanti.
// Timestamp is the shop-local wall clock; its Location is not meaningful until mapped.
type CashMovement struct {
	MovementID  string          `db:"movement_id"`
	Date        string          `db:"date"`
	Kind        string          `db:"kind"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	Category    string          `db:"category"`
	Timestamp   time.Time       `db:"timestamp"`
	Operator    string          `db:"operator"`
	CreatedAt   time.Time       `db:"created_at"`
}

// DailyRecord is a row of fondo_cassa.
type DailyRecord struct {
	Date             string           `db:"date"`
	OpeningFloat     decimal.Decimal  `db:"opening_float"`
	CashSales        decimal.Decimal  `db:"cash_sales"`
	CardSales        decimal.Decimal  `db:"card_sales"`
	OtherIncome      decimal.Decimal  `db:"other_income"`
	Expenses         decimal.Decimal  `db:"expenses"`
	TheoreticalFloat decimal.Decimal  `db:"theoretical_float"`
	ActualFloat      *decimal.Decimal `db:"actual_float"`
	Discrepancy      *decimal.Decimal `db:"discrepancy"`
	Closed           bool             `db:"closed"`
	Note             string           `db:"note"`
	ClosedAt         *time.Time       `db:"closed_at"`
	ClosedBy         *string          `db:"closed_by"`
	UpdatedAt        time.Time        `db:"updated_at"`
}

// CardPayment is a row of pagamenti_pos.
type CardPayment struct {
	PaymentID   string          `db:"payment_id"`
	Date        string          `db:"date"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	Note        string          `db:"note"`
	AuditFields
}
