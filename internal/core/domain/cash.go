package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind classifies a cash drawer movement.
type MovementKind string

const (
	MovementIncome       MovementKind = "income"
	MovementExpense      MovementKind = "expense"
	MovementOpeningFloat MovementKind = "opening_float"
	MovementClosingFloat MovementKind = "closing_float"
)

// IsValid reports whether k is a known movement kind.
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementIncome, MovementExpense, MovementOpeningFloat, MovementClosingFloat:
		return true
	}
	return false
}

// IsManual reports whether operators may record k directly.
func (k MovementKind) IsManual() bool {
	return k == MovementIncome || k == MovementExpense
}

// CashMovement is one append-only entry of the cash drawer log.
type CashMovement struct {
	MovementID  string          `json:"movementID"`
	Date        string          `json:"date"` // business date of Timestamp
	Kind        MovementKind    `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Operator    string          `json:"operator"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DailyCashRecord is the per-date snapshot derived from movements and card payments.
type DailyCashRecord struct {
	Date             string           `json:"date"`
	OpeningFloat     decimal.Decimal  `json:"openingFloat"`
	CashSales        decimal.Decimal  `json:"cashSales"`
	CardSales        decimal.Decimal  `json:"cardSales"`
	OtherIncome      decimal.Decimal  `json:"otherIncome"`
	Expenses         decimal.Decimal  `json:"expenses"`
	TheoreticalFloat decimal.Decimal  `json:"theoreticalFloat"`
	ActualFloat      *decimal.Decimal `json:"actualFloat,omitempty"`
	Discrepancy      *decimal.Decimal `json:"discrepancy,omitempty"`
	Closed           bool             `json:"closed"`
	Note             string           `json:"note,omitempty"`
	ClosedAt         *time.Time       `json:"closedAt,omitempty"`
	ClosedBy         *string          `json:"closedBy,omitempty"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// TotalIncome is cash, card and other income together, as shown to the user.
func (r DailyCashRecord) TotalIncome() decimal.Decimal {
	return r.CashSales.Add(r.CardSales).Add(r.OtherIncome)
}

// DailyState is the computed view of a business day.
type DailyState struct {
	DailyCashRecord
	Opened    bool           `json:"opened"`
	Movements []CashMovement `json:"movements"`
}

// Default operator recorded on movements created without a user.
const SystemOperator = "Sistema"

// Opening movement defaults.
const (
	OpeningMovementTime        = "08:00:00"
	OpeningMovementDescription = "Fondo cassa apertura giornata"
)

// IncomeCategories and ExpenseCategories list the suggested movement categories.
var (
	IncomeCategories = []string{
		"Vendite al banco",
		"Vendite asporto",
		"Catering/Eventi",
		"Altre entrate",
	}
	ExpenseCategories = []string{
		"Acquisto polli",
		"Ingredienti/Condimenti",
		"Utilities (luce/gas/acqua)",
		"Affitto",
		"Stipendi",
		"Carburante",
		"Manutenzioni",
		"Tasse e tributi",
		"Altre spese",
	}
)
