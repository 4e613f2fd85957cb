package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/internal/models"
	"github.com/gestionale-jos/jos_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxProductRepository struct {
	BaseRepository
}

func newPgxProductRepository(pool *pgxpool.Pool) portsrepo.ProductRepositoryFacade {
	return &PgxProductRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ProductRepositoryFacade = (*PgxProductRepository)(nil)

const productColumns = `product_id, name, description, category, price, unit_of_measure, vat_code, vat_rate, active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanProduct(row pgx.Row) (models.Product, error) {
	var m models.Product
	err := row.Scan(
		&m.ProductID,
		&m.Name,
		&m.Description,
		&m.Category,
		&m.Price,
		&m.UnitOfMeasure,
		&m.VATCode,
		&m.VATRate,
		&m.Active,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	m, err := scanProduct(r.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM prodotti WHERE product_id = $1;`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	product := mapping.ToDomainProduct(m)
	return &product, nil
}

// ListProducts orders by the display position of the category, then by name.
func (r *PgxProductRepository) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	categories := make([]string, len(domain.ProductCategories))
	for i, c := range domain.ProductCategories {
		categories[i] = string(c)
	}
	query := `SELECT ` + productColumns + `
		FROM prodotti
		WHERE $1 OR active
		ORDER BY COALESCE(array_position($2::text[], category), 999), lower(name);`
	rows, err := r.Pool.Query(ctx, query, includeInactive, categories)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		m, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, mapping.ToDomainProduct(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", rows.Err())
	}
	return products, nil
}

func (r *PgxProductRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	query := `
		INSERT INTO prodotti (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ProductID,
		m.Name,
		m.Description,
		m.Category,
		m.Price,
		m.UnitOfMeasure,
		m.VATCode,
		m.VATRate,
		m.Active,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: product %s", apperrors.ErrDuplicate, m.ProductID)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *PgxProductRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	query := `
		UPDATE prodotti SET
			name = $1, description = $2, category = $3, price = $4, unit_of_measure = $5,
			vat_code = $6, vat_rate = $7, active = $8, last_updated_at = $9, last_updated_by = $10
		WHERE product_id = $11;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.Name,
		m.Description,
		m.Category,
		m.Price,
		m.UnitOfMeasure,
		m.VATCode,
		m.VATRate,
		m.Active,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.ProductID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", m.ProductID, apperrors.ErrNotFound)
	}
	return nil
}
