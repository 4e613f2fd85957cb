package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/google/uuid"
)

// productService implements the ProductSvcFacade interface
type productService struct {
	BaseService
	productRepo portsrepo.ProductRepositoryFacade
}

// ProductServiceOption is a functional option for configuring the product service
type ProductServiceOption func(*productService)

// WithProductRoleAuthorizer sets the role authorizer for the product service.
func WithProductRoleAuthorizer(authorizer portssvc.UserRoleAuthorizerSvc) ProductServiceOption {
	return func(s *productService) {
		s.RoleAuthorizer = authorizer
	}
}

// NewProductService creates a new product service
func NewProductService(productRepo portsrepo.ProductRepositoryFacade, options ...ProductServiceOption) portssvc.ProductSvcFacade {
	svc := &productService{productRepo: productRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ProductSvcFacade = (*productService)(nil)

func (s *productService) authorizeAdmin(ctx context.Context, userID, action string) error {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleAdmin); err != nil {
		s.LogError(ctx, err, "User not authorized to "+action,
			slog.String("user_id", userID))
		return err
	}
	return nil
}

func (s *productService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find product", slog.String("product_id", productID))
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	products, err := s.productRepo.ListProducts(ctx, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		return []domain.Product{}, nil
	}
	return products, nil
}

// ListProductsByCategory groups the active products in category display order; empty categories are omitted.
func (s *productService) ListProductsByCategory(ctx context.Context) ([]domain.ProductGroup, error) {
	products, err := s.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[domain.ProductCategory][]domain.Product)
	for _, p := range products {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}
	groups := []domain.ProductGroup{}
	for _, cat := range domain.ProductCategories {
		if len(byCategory[cat]) > 0 {
			groups = append(groups, domain.ProductGroup{Category: cat, Products: byCategory[cat]})
		}
	}
	return groups, nil
}

func (s *productService) CreateProduct(ctx context.Context, req dto.CreateProductRequest, userID string) (*domain.Product, error) {
	if err := s.authorizeAdmin(ctx, userID, "create product"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, req.Category)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
	}
	code, ok := domain.LookupVATCode(req.VATCode)
	if !ok {
		return nil, fmt.Errorf("%w: unknown VAT code %q", apperrors.ErrValidation, req.VATCode)
	}

	now := time.Now().UTC()
	product := domain.Product{
		ProductID:     uuid.NewString(),
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		Category:      req.Category,
		Price:         req.Price,
		UnitOfMeasure: strings.TrimSpace(req.UnitOfMeasure),
		VATCode:       code.Code,
		VATRate:       code.Rate,
		Active:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.productRepo.SaveProduct(ctx, product); err != nil {
		s.LogError(ctx, err, "Failed to save product", slog.String("name", name))
		return nil, err
	}
	s.LogInfo(ctx, "Product created", slog.String("product_id", product.ProductID))
	return &product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest, userID string) (*domain.Product, error) {
	if err := s.authorizeAdmin(ctx, userID, "update product"); err != nil {
		return nil, err
	}
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, *req.Category)
		}
		product.Category = *req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
		}
		product.Price = *req.Price
	}
	if req.UnitOfMeasure != nil {
		product.UnitOfMeasure = strings.TrimSpace(*req.UnitOfMeasure)
	}
	if req.VATCode != nil {
		code, ok := domain.LookupVATCode(*req.VATCode)
		if !ok {
			return nil, fmt.Errorf("%w: unknown VAT code %q", apperrors.ErrValidation, *req.VATCode)
		}
		product.VATCode = code.Code
		product.VATRate = code.Rate
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	product.LastUpdatedAt = time.Now().UTC()
	product.LastUpdatedBy = userID
	if err := s.productRepo.UpdateProduct(ctx, *product); err != nil {
		s.LogError(ctx, err, "Failed to update product", slog.String("product_id", productID))
		return nil, err
	}
	s.LogInfo(ctx, "Product updated", slog.String("product_id", productID))
	return product, nil
}

func (s *productService) DeactivateProduct(ctx context.Context, productID string, userID string) error {
	active := false
	_, err := s.UpdateProduct(ctx, productID, dto.UpdateProductRequest{Active: &active}, userID)
	return err
}

// SeedDefaultProducts loads the starter catalogue; it does nothing when products already exist.
func (s *productService) SeedDefaultProducts(ctx context.Context, userID string) (int, error) {
	existing, err := s.ListProducts(ctx, true)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.LogInfo(ctx, "Catalogue not empty, skipping seed", slog.Int("existing", len(existing)))
		return 0, nil
	}
	now := time.Now().UTC()
	seeded := 0
	for _, product := range domain.DefaultProducts() {
		product.ProductID = uuid.NewString()
		product.AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		}
		if err := s.productRepo.SaveProduct(ctx, product); err != nil {
			s.LogError(ctx, err, "Failed to seed product", slog.String("name", product.Name))
			return seeded, err
		}
		seeded++
	}
	s.LogInfo(ctx, "Default products seeded", slog.Int("count", seeded))
	return seeded, nil
}
