package services

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/dto"
)

// ProductSvcFacade defines operations on the product catalogue
type ProductSvcFacade interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context) ([]domain.ProductGroup, error)
	CreateProduct(ctx context.Context, req dto.CreateProductRequest, userID string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest, userID string) (*domain.Product, error)
	// DeactivateProduct hides a product without deleting it.
	DeactivateProduct(ctx context.Context, productID string, userID string) error
	// SeedDefaultProducts loads the starter catalogue into an empty catalogue.
	SeedDefaultProducts(ctx context.Context, userID string) (int, error)
}
