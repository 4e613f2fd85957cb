package dto

import (
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateProductRequest adds a product to the catalogue.
type CreateProductRequest struct {
	Name          string                 `json:"name" binding:"required,max=200"`
	Description   string                 `json:"description" binding:"max=500"`
	Category      domain.ProductCategory `json:"category" binding:"required,oneof=Spiedo Pezzi Gastronomia Contorni Bevande"`
	Price         decimal.Decimal        `json:"price" binding:"gte=0"`
	UnitOfMeasure string                 `json:"unitOfMeasure" binding:"required,max=20"`
	VATCode       string                 `json:"vatCode" binding:"required"`
}

// UpdateProductRequest edits a product. Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name          *string                 `json:"name" binding:"omitempty,max=200"`
	Description   *string                 `json:"description" binding:"omitempty,max=500"`
	Category      *domain.ProductCategory `json:"category" binding:"omitempty,oneof=Spiedo Pezzi Gastronomia Contorni Bevande"`
	Price         *decimal.Decimal        `json:"price" binding:"omitempty,gte=0"`
	UnitOfMeasure *string                 `json:"unitOfMeasure" binding:"omitempty,max=20"`
	VATCode       *string                 `json:"vatCode"`
	Active        *bool                   `json:"active"`
}

// ListProductsParams defines query parameters for listing products.
type ListProductsParams struct {
	IncludeInactive bool `form:"includeInactive"`
}

// ReferenceDataResponse bundles the static code tables used by the UI.
type ReferenceDataResponse struct {
	VATCodes          []domain.VATCode         `json:"vatCodes"`
	FiscalRegimes     []domain.CodeDescription `json:"fiscalRegimes"`
	DocumentTypes     []domain.CodeDescription `json:"documentTypes"`
	PaymentMethods    []string                 `json:"paymentMethods"`
	IncomeCategories  []string                 `json:"incomeCategories"`
	ExpenseCategories []string                 `json:"expenseCategories"`
	ProductCategories []domain.ProductCategory `json:"productCategories"`
}

// NewReferenceDataResponse collects the reference tables.
func NewReferenceDataResponse() ReferenceDataResponse {
	return ReferenceDataResponse{
		VATCodes:          domain.VATCodes,
		FiscalRegimes:     domain.FiscalRegimes,
		DocumentTypes:     domain.DocumentTypes,
		PaymentMethods:    domain.PaymentMethods,
		IncomeCategories:  domain.IncomeCategories,
		ExpenseCategories: domain.ExpenseCategories,
		ProductCategories: domain.ProductCategories,
	}
}
