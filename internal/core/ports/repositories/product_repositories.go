package repositories

import (
	"context"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

// ProductReader defines read operations for the product catalogue
type ProductReader interface {
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// ListProducts returns products ordered by category then name.
	ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error)
}

// ProductWriter defines write operations for the product catalogue
type ProductWriter interface {
	SaveProduct(ctx context.Context, product domain.Product) error
	UpdateProduct(ctx context.Context, product domain.Product) error
}

// ProductRepositoryFacade combines all product repository interfaces
type ProductRepositoryFacade interface {
	ProductReader
	ProductWriter
}
