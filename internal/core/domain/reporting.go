package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReportRow is one business day of a monthly report.
type DailyReportRow struct {
	Date             string           `json:"date"`
	OpeningFloat     decimal.Decimal  `json:"openingFloat"`
	CashSales        decimal.Decimal  `json:"cashSales"`
	CardSales        decimal.Decimal  `json:"cardSales"`
	OtherIncome      decimal.Decimal  `json:"otherIncome"`
	Expenses         decimal.Decimal  `json:"expenses"`
	TotalIncome      decimal.Decimal  `json:"totalIncome"`
	TheoreticalFloat decimal.Decimal  `json:"theoreticalFloat"`
	ActualFloat      *decimal.Decimal `json:"actualFloat,omitempty"`
	Discrepancy      *decimal.Decimal `json:"discrepancy,omitempty"`
	Closed           bool             `json:"closed"`
	Note             string           `json:"note,omitempty"`
}

// MonthlyReport aggregates the closed days of one calendar month.
type MonthlyReport struct {
	Year             int              `json:"year"`
	Month            int              `json:"month"`
	DaysClosed       int              `json:"daysClosed"`
	TotalCashSales   decimal.Decimal  `json:"totalCashSales"`
	TotalCardSales   decimal.Decimal  `json:"totalCardSales"`
	TotalOtherIncome decimal.Decimal  `json:"totalOtherIncome"`
	TotalExpenses    decimal.Decimal  `json:"totalExpenses"`
	TotalIncome      decimal.Decimal  `json:"totalIncome"`
	TotalDiscrepancy decimal.Decimal  `json:"totalDiscrepancy"`
	DailyAverage     decimal.Decimal  `json:"dailyAverage"`
	Days             []DailyReportRow `json:"days"`
	GeneratedAt      time.Time        `json:"generatedAt"`
}

// DashboardStats is the home screen summary.
type DashboardStats struct {
	Date                    string          `json:"date"`
	DayOpened               bool            `json:"dayOpened"`
	DayClosed               bool            `json:"dayClosed"`
	CashBalance             decimal.Decimal `json:"cashBalance"`
	CardToday               decimal.Decimal `json:"cardToday"`
	CardLast7Days           decimal.Decimal `json:"cardLast7Days"`
	InvoicesThisMonth       int             `json:"invoicesThisMonth"`
	InvoicedThisMonthAmount decimal.Decimal `json:"invoicedThisMonthAmount"`
	RecentCardPayments      []CardPayment   `json:"recentCardPayments"`
	RecentMovements         []CashMovement  `json:"recentMovements"`
}
