package dto

import (
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenDayRequest opens a business day. A missing float uses the configured default.
type OpenDayRequest struct {
	OpeningFloat *decimal.Decimal `json:"openingFloat" binding:"omitempty,gte=0"`
}

// RecordMovementRequest records a cash income or expense.
type RecordMovementRequest struct {
	Kind        domain.MovementKind `json:"kind" binding:"required,oneof=income expense"`
	Amount      decimal.Decimal     `json:"amount" binding:"gte=0"`
	Description string              `json:"description" binding:"required,max=255"`
	Category    string              `json:"category" binding:"max=100"`
	// Shop-local wall clock, YYYY-MM-DD HH:MM:SS. Defaults to now.
	Timestamp *string `json:"timestamp" binding:"omitempty,datetime=2006-01-02 15:04:05"`
}

// CloseDayRequest closes a business day with the counted float.
type CloseDayRequest struct {
	ActualFloat decimal.Decimal `json:"actualFloat" binding:"gte=0"`
	Note        string          `json:"note" binding:"max=1000"`
}

// SetOtherIncomeRequest sets the non-sale income of a day.
type SetOtherIncomeRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gte=0"`
}

// ListDailyRecordsParams bounds the daily record history.
type ListDailyRecordsParams struct {
	From string `form:"from" binding:"omitempty,datekey"`
	To   string `form:"to" binding:"omitempty,datekey"`
}

// MovementSumParams selects an aggregator projection.
type MovementSumParams struct {
	Date string              `form:"date" binding:"required,datekey"`
	Kind domain.MovementKind `form:"kind" binding:"omitempty,oneof=income expense opening_float closing_float card"`
}

// MovementSumResponse is the result of an aggregator projection.
type MovementSumResponse struct {
	Date  string          `json:"date"`
	Kind  string          `json:"kind"`
	Total decimal.Decimal `json:"total"`
}

// DailyStateResponse is a computed business day with the totals shown on screen.
type DailyStateResponse struct {
	domain.DailyCashRecord
	Opened      bool                  `json:"opened"`
	TotalIncome decimal.Decimal       `json:"totalIncome"`
	Movements   []domain.CashMovement `json:"movements"`
}

// ToDailyStateResponse converts a domain.DailyState to its response DTO.
func ToDailyStateResponse(state *domain.DailyState) DailyStateResponse {
	movements := state.Movements
	if movements == nil {
		movements = []domain.CashMovement{}
	}
	return DailyStateResponse{
		DailyCashRecord: state.DailyCashRecord,
		Opened:          state.Opened,
		TotalIncome:     state.TotalIncome(),
		Movements:       movements,
	}
}

// ListDailyRecordsResponse wraps the daily record history.
type ListDailyRecordsResponse struct {
	Records []domain.DailyCashRecord `json:"records"`
}

// MonthlyReportParams selects a calendar month.
type MonthlyReportParams struct {
	Year   int    `form:"year" binding:"required,min=2000,max=2100"`
	Month  int    `form:"month" binding:"required,min=1,max=12"`
	Format string `form:"format" binding:"omitempty,oneof=pdf xlsx"`
}
