package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/internal/models"
	"github.com/gestionale-jos/jos_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxClientRepository struct {
	BaseRepository
}

func newPgxClientRepository(pool *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

const clientColumns = `client_id, business_name, vat_number, tax_code, address, zip_code, city, province, country,
	email, pec, phone, recipient_code, split_payment, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanClient(row pgx.Row) (models.Client, error) {
	var m models.Client
	err := row.Scan(
		&m.ClientID,
		&m.BusinessName,
		&m.VATNumber,
		&m.TaxCode,
		&m.Address,
		&m.ZipCode,
		&m.City,
		&m.Province,
		&m.Country,
		&m.Email,
		&m.PEC,
		&m.Phone,
		&m.RecipientCode,
		&m.SplitPayment,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	m, err := scanClient(r.Pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clienti WHERE client_id = $1;`, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client %s: %w", clientID, err)
	}
	client := mapping.ToDomainClient(m)
	return &client, nil
}

func (r *PgxClientRepository) ListClients(ctx context.Context, search string) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + `
		FROM clienti
		WHERE $1 = ''
		   OR lower(business_name) LIKE '%' || $1 || '%'
		   OR lower(COALESCE(vat_number, '')) LIKE '%' || $1 || '%'
		   OR lower(COALESCE(tax_code, '')) LIKE '%' || $1 || '%'
		ORDER BY lower(business_name) ASC;`
	rows, err := r.Pool.Query(ctx, query, strings.ToLower(strings.TrimSpace(search)))
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", rows.Err())
	}
	return clients, nil
}

func (r *PgxClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	m := mapping.ToModelClient(client)
	query := `
		INSERT INTO clienti (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.Pool.Exec(ctx, query,
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
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: client %s", apperrors.ErrDuplicate, m.ClientID)
		}
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (r *PgxClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	m := mapping.ToModelClient(client)
	query := `
		UPDATE clienti SET
			business_name = $1, vat_number = $2, tax_code = $3, address = $4, zip_code = $5, city = $6,
			province = $7, country = $8, email = $9, pec = $10, phone = $11, recipient_code = $12,
			split_payment = $13, notes = $14, last_updated_at = $15, last_updated_by = $16
		WHERE client_id = $17;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
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
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", m.ClientID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteClient refuses clients still referenced by invoices.
func (r *PgxClientRepository) DeleteClient(ctx context.Context, clientID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM clienti WHERE client_id = $1;`, clientID)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: client %s has invoices", apperrors.ErrDuplicate, clientID)
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", clientID, apperrors.ErrNotFound)
	}
	return nil
}
