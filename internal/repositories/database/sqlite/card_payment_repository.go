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
	"github.com/shopspring/decimal"
)

type cardPaymentRepository struct {
	BaseRepository
}

func newCardPaymentRepository(db *sql.DB) *cardPaymentRepository {
	return &cardPaymentRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.CardPaymentRepositoryFacade = (*cardPaymentRepository)(nil)

const cardPaymentColumns = `payment_id, date, amount, description, note, created_at, created_by, last_updated_at, last_updated_by`

func scanCardPayment(row rowScanner) (models.CardPayment, error) {
	var (
		m                        models.CardPayment
		createdAt, lastUpdatedAt string
	)
	if err := row.Scan(
		&m.PaymentID,
		&m.Date,
		&m.Amount,
		&m.Description,
		&m.Note,
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

func (r *cardPaymentRepository) FindCardPaymentByID(ctx context.Context, paymentID string) (*domain.CardPayment, error) {
	m, err := scanCardPayment(r.DB.QueryRowContext(ctx, `SELECT `+cardPaymentColumns+` FROM pagamenti_pos WHERE payment_id = ?;`, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find card payment %s: %w", paymentID, err)
	}
	payment := mapping.ToDomainCardPayment(m)
	return &payment, nil
}

func (r *cardPaymentRepository) ListCardPayments(ctx context.Context, filter domain.CardPaymentFilter) ([]domain.CardPayment, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Date != "" {
		conds = append(conds, "date = ?")
		args = append(args, filter.Date)
	} else {
		if filter.From != "" {
			conds = append(conds, "date >= ?")
			args = append(args, filter.From)
		}
		if filter.To != "" {
			conds = append(conds, "date <= ?")
			args = append(args, filter.To)
		}
	}
	if filter.AfterDate != "" && filter.AfterCreatedAt != nil {
		after := formatTime(*filter.AfterCreatedAt)
		conds = append(conds, "(date < ? OR (date = ? AND (created_at < ? OR (created_at = ? AND payment_id < ?))))")
		args = append(args, filter.AfterDate, filter.AfterDate, after, after, filter.AfterPaymentID)
	}

	query := `SELECT ` + cardPaymentColumns + ` FROM pagamenti_pos`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, payment_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card payment rows: %w", err)
	}
	return payments, nil
}

func (r *cardPaymentRepository) ListCardPaymentDates(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, r.DB, `SELECT DISTINCT date FROM pagamenti_pos ORDER BY date DESC;`)
}

func queryStrings(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *cardPaymentRepository) SaveCardPayment(ctx context.Context, payment domain.CardPayment) error {
	m := mapping.ToModelCardPayment(payment)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO pagamenti_pos (`+cardPaymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		m.PaymentID,
		m.Date,
		m.Amount,
		m.Description,
		m.Note,
		formatTime(m.CreatedAt),
		m.CreatedBy,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: card payment %s", apperrors.ErrDuplicate, m.PaymentID)
		}
		return fmt.Errorf("failed to insert card payment: %w", err)
	}
	return nil
}

func (r *cardPaymentRepository) UpdateCardPayment(ctx context.Context, payment domain.CardPayment) error {
	m := mapping.ToModelCardPayment(payment)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE pagamenti_pos
		SET date = ?, amount = ?, description = ?, note = ?, last_updated_at = ?, last_updated_by = ?
		WHERE payment_id = ?;`,
		m.Date,
		m.Amount,
		m.Description,
		m.Note,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
		m.PaymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card payment: %w", err)
	}
	return expectRow(res, "card payment "+m.PaymentID)
}

func (r *cardPaymentRepository) DeleteCardPayment(ctx context.Context, paymentID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM pagamenti_pos WHERE payment_id = ?;`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete card payment: %w", err)
	}
	return expectRow(res, "card payment "+paymentID)
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return nil
}

// CardSalesByDate sums in Go; SQLite would add the TEXT amounts as floats.
func (r *cardPaymentRepository) CardSalesByDate(ctx context.Context, from, to string) (map[string]decimal.Decimal, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT date, amount FROM pagamenti_pos
		WHERE (? = '' OR date >= ?) AND (? = '' OR date <= ?);`, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("error querying card sales: %w", err)
	}
	defer rows.Close()

	result := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			date   string
			amount decimal.Decimal
		)
		if err := rows.Scan(&date, &amount); err != nil {
			return nil, fmt.Errorf("error scanning card sales row: %w", err)
		}
		result[date] = result[date].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card sales rows: %w", err)
	}
	return result, nil
}
