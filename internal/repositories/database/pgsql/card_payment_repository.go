package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/internal/models"
	"github.com/gestionale-jos/jos_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCardPaymentRepository struct {
	BaseRepository
}

func newPgxCardPaymentRepository(pool *pgxpool.Pool) portsrepo.CardPaymentRepositoryFacade {
	return &PgxCardPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CardPaymentRepositoryFacade = (*PgxCardPaymentRepository)(nil)

const cardPaymentColumns = `payment_id, to_char(date, 'YYYY-MM-DD'), amount, description, note,
	created_at, created_by, last_updated_at, last_updated_by`

func scanCardPayment(row pgx.Row) (models.CardPayment, error) {
	var m models.CardPayment
	err := row.Scan(
		&m.PaymentID,
		&m.Date,
		&m.Amount,
		&m.Description,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxCardPaymentRepository) FindCardPaymentByID(ctx context.Context, paymentID string) (*domain.CardPayment, error) {
	query := `SELECT ` + cardPaymentColumns + ` FROM pagamenti_pos WHERE payment_id = $1;`
	m, err := scanCardPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find card payment %s: %w", paymentID, err)
	}
	payment := mapping.ToDomainCardPayment(m)
	return &payment, nil
}

func (r *PgxCardPaymentRepository) ListCardPayments(ctx context.Context, filter domain.CardPaymentFilter) ([]domain.CardPayment, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Date != "" {
		conds = append(conds, "date = "+arg(dateArg(filter.Date)))
	} else {
		if filter.From != "" {
			conds = append(conds, "date >= "+arg(dateArg(filter.From)))
		}
		if filter.To != "" {
			conds = append(conds, "date <= "+arg(dateArg(filter.To)))
		}
	}
	if filter.AfterDate != "" && filter.AfterCreatedAt != nil {
		conds = append(conds, fmt.Sprintf("(date, created_at, payment_id) < (%s, %s, %s)",
			arg(dateArg(filter.AfterDate)), arg(filter.AfterCreatedAt.UTC()), arg(filter.AfterPaymentID)))
	}

	query := `SELECT ` + cardPaymentColumns + ` FROM pagamenti_pos`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, payment_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query card payments: %w", err)
	}
	defer rows.Close()

	payments := []domain.CardPayment{}
	for rows.Next() {
		m, err := scanCardPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card payment row: %w", err)
		}
		payments = append(payments, mapping.ToDomainCardPayment(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating card payment rows: %w", rows.Err())
	}
	return payments, nil
}

func (r *PgxCardPaymentRepository) ListCardPaymentDates(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT DISTINCT to_char(date, 'YYYY-MM-DD') AS d FROM pagamenti_pos ORDER BY d DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query card payment dates: %w", err)
	}
	dates, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect card payment dates: %w", err)
	}
	return dates, nil
}

func (r *PgxCardPaymentRepository) SaveCardPayment(ctx context.Context, payment domain.CardPayment) error {
	m := mapping.ToModelCardPayment(payment)
	query := `
		INSERT INTO pagamenti_pos (payment_id, date, amount, description, note, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PaymentID,
		dateArg(m.Date),
		m.Amount,
		m.Description,
		m.Note,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: card payment %s", apperrors.ErrDuplicate, m.PaymentID)
		}
		return fmt.Errorf("failed to insert card payment: %w", err)
	}
	return nil
}

func (r *PgxCardPaymentRepository) UpdateCardPayment(ctx context.Context, payment domain.CardPayment) error {
	m := mapping.ToModelCardPayment(payment)
	query := `
		UPDATE pagamenti_pos
		SET date = $1, amount = $2, description = $3, note = $4, last_updated_at = $5, last_updated_by = $6
		WHERE payment_id = $7;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		dateArg(m.Date),
		m.Amount,
		m.Description,
		m.Note,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.PaymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card payment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("card payment %s: %w", m.PaymentID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxCardPaymentRepository) DeleteCardPayment(ctx context.Context, paymentID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM pagamenti_pos WHERE payment_id = $1;`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete card payment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("card payment %s: %w", paymentID, apperrors.ErrNotFound)
	}
	return nil
}
