package dto

import (
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCardPaymentRequest logs a POS card payment.
type CreateCardPaymentRequest struct {
	Date        string          `json:"date" binding:"required,datekey"`
	Amount      decimal.Decimal `json:"amount" binding:"gte=0"`
	Description string          `json:"description" binding:"max=255"`
	Note        string          `json:"note" binding:"max=1000"`
}

// UpdateCardPaymentRequest edits a card payment. Nil fields are left unchanged.
type UpdateCardPaymentRequest struct {
	Date        *string          `json:"date" binding:"omitempty,datekey"`
	Amount      *decimal.Decimal `json:"amount" binding:"omitempty,gte=0"`
	Description *string          `json:"description" binding:"omitempty,max=255"`
	Note        *string          `json:"note" binding:"omitempty,max=1000"`
}

// ListCardPaymentsParams defines query parameters for listing card payments.
type ListCardPaymentsParams struct {
	Date      string  `form:"date" binding:"omitempty,datekey"`
	From      string  `form:"from" binding:"omitempty,datekey"`
	To        string  `form:"to" binding:"omitempty,datekey"`
	Limit     int     `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken *string `form:"nextToken"`
}

// ListCardPaymentsResponse is one page of card payments.
type ListCardPaymentsResponse struct {
	Payments  []domain.CardPayment `json:"payments"`
	PageTotal decimal.Decimal      `json:"pageTotal"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// CardPaymentTotalResponse is the sum of card payments for a date.
type CardPaymentTotalResponse struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}
