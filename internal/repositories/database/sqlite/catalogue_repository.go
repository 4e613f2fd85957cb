package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/internal/models"
	"github.com/gestionale-jos/jos_backend/internal/utils/mapping"
)

type clientRepository struct {
	BaseRepository
}

var _ portsrepo.ClientRepositoryFacade = (*clientRepository)(nil)

const clientColumns = `client_id, business_name, vat_number, tax_code, address, zip_code, city, province, country,
	email, pec, phone, recipient_code, split_payment, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanClient(row rowScanner) (models.Client, error) {
	var (
		m                                          models.Client
		vat, taxCode, email, pec, phone, recipient sql.NullString
		createdAt, lastUpdatedAt                   string
	)
	if err := row.Scan(
		&m.ClientID,
		&m.BusinessName,
		&vat,
		&taxCode,
		&m.Address,
		&m.ZipCode,
		&m.City,
		&m.Province,
		&m.Country,
		&email,
		&pec,
		&phone,
		&recipient,
		&m.SplitPayment,
		&m.Notes,
		&createdAt,
		&m.CreatedBy,
		&lastUpdatedAt,
		&m.LastUpdatedBy,
	); err != nil {
		return m, err
	}
	m.VATNumber = nullString(vat)
	m.TaxCode = nullString(taxCode)
	m.Email = nullString(email)
	m.PEC = nullString(pec)
	m.Phone = nullString(phone)
	m.RecipientCode = nullString(recipient)
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	m.LastUpdatedAt, err = parseTime(lastUpdatedAt)
	return m, err
}

func (r *clientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	m, err := scanClient(r.DB.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clienti WHERE client_id = ?;`, clientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client %s: %w", clientID, err)
	}
	client := mapping.ToDomainClient(m)
	return &client, nil
}

func (r *clientRepository) ListClients(ctx context.Context, search string) ([]domain.Client, error) {
	q := strings.ToLower(strings.TrimSpace(search))
	rows, err := r.DB.QueryContext(ctx, `SELECT `+clientColumns+`
		FROM clienti
		WHERE ? = ''
		   OR instr(lower(business_name), ?) > 0
		   OR instr(lower(COALESCE(vat_number, '')), ?) > 0
		   OR instr(lower(COALESCE(tax_code, '')), ?) > 0
		ORDER BY lower(business_name) ASC;`, q, q, q, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		m, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, mapping.ToDomainClient(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	m := mapping.ToModelClient(client)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO clienti (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		m.ClientID,
		m.BusinessName,
		m.VATNumber,
		m.TaxCode,
		m.Address,
		m.ZipCode,
		m.City,
		m.Province,
		m.Country,
		m.Email,
		m.PEC,
		m.Phone,
		m.RecipientCode,
		m.SplitPayment,
		m.Notes,
		formatTime(m.CreatedAt),
		m.CreatedBy,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: client %s", apperrors.ErrDuplicate, m.ClientID)
		}
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (r *clientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	m := mapping.ToModelClient(client)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE clienti SET
			business_name = ?, vat_number = ?, tax_code = ?, address = ?, zip_code = ?, city = ?,
			province = ?, country = ?, email = ?, pec = ?, phone = ?, recipient_code = ?,
			split_payment = ?, notes = ?, last_updated_at = ?, last_updated_by = ?
		WHERE client_id = ?;`,
		m.BusinessName,
		m.VATNumber,
		m.TaxCode,
		m.Address,
		m.ZipCode,
		m.City,
		m.Province,
		m.Country,
		m.Email,
		m.PEC,
		m.Phone,
		m.RecipientCode,
		m.SplitPayment,
		m.Notes,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
		m.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return expectRow(res, "client "+m.ClientID)
}

func (r *clientRepository) DeleteClient(ctx context.Context, clientID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM clienti WHERE client_id = ?;`, clientID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: client %s has invoices", apperrors.ErrDuplicate, clientID)
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return expectRow(res, "client "+clientID)
}

type productRepository struct {
	BaseRepository
}

var _ portsrepo.ProductRepositoryFacade = (*productRepository)(nil)

const productColumns = `product_id, name, description, category, price, unit_of_measure, vat_code, vat_rate, active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		m                        models.Product
		createdAt, lastUpdatedAt string
	)
	if err := row.Scan(
		&m.ProductID,
		&m.Name,
		&m.Description,
		&m.Category,
		&m.Price,
		&m.UnitOfMeasure,
		&m.VATCode,
		&m.VATRate,
		&m.Active,
		&createdAt,
		&m.CreatedBy,
		&lastUpdatedAt,
		&m.LastUpdatedBy,
	); err != nil {
		return m, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	m.LastUpdatedAt, err = parseTime(lastUpdatedAt)
	return m, err
}

func (r *productRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	m, err := scanProduct(r.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM prodotti WHERE product_id = ?;`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	product := mapping.ToDomainProduct(m)
	return &product, nil
}

// categoryOrder ranks categories by their display position.
func categoryOrder() (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(domain.ProductCategories))
	b.WriteString("CASE category")
	for i, c := range domain.ProductCategories {
		fmt.Fprintf(&b, " WHEN ? THEN %d", i)
		args = append(args, string(c))
	}
	b.WriteString(" ELSE 999 END")
	return b.String(), args
}

func (r *productRepository) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	order, args := categoryOrder()
	args = append([]any{includeInactive}, args...)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+productColumns+`
		FROM prodotti
		WHERE ? OR active
		ORDER BY `+order+`, lower(name);`, args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *productRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO prodotti (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		m.ProductID,
		m.Name,
		m.Description,
		m.Category,
		m.Price,
		m.UnitOfMeasure,
		m.VATCode,
		m.VATRate,
		m.Active,
		formatTime(m.CreatedAt),
		m.CreatedBy,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %s", apperrors.ErrDuplicate, m.ProductID)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE prodotti SET
			name = ?, description = ?, category = ?, price = ?, unit_of_measure = ?,
			vat_code = ?, vat_rate = ?, active = ?, last_updated_at = ?, last_updated_by = ?
		WHERE product_id = ?;`,
		m.Name,
		m.Description,
		m.Category,
		m.Price,
		m.UnitOfMeasure,
		m.VATCode,
		m.VATRate,
		m.Active,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
		m.ProductID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectRow(res, "product "+m.ProductID)
}
