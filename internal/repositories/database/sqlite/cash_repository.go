package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/internal/models"
	"github.com/gestionale-jos/jos_backend/internal/utils/mapping"
)

type cashMovementRepository struct {
	BaseRepository
	loc *time.Location
}

func newCashMovementRepository(db *sql.DB, loc *time.Location) portsrepo.CashMovementRepositoryFacade {
	if loc == nil {
		loc = time.Local
	}
	return &cashMovementRepository{BaseRepository: BaseRepository{DB: db}, loc: loc}
}

var _ portsrepo.CashMovementRepositoryFacade = (*cashMovementRepository)(nil)

const movementColumns = `movement_id, date, kind, amount, description, category, timestamp, operator, created_at`

func (r *cashMovementRepository) AppendMovement(ctx context.Context, movement domain.CashMovement) error {
	m := mapping.ToModelCashMovement(movement)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO movimenti_contanti (`+movementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		m.MovementID,
		m.Date,
		m.Kind,
		m.Amount,
		m.Description,
		m.Category,
		m.Timestamp.In(r.loc).Format(domain.TimestampLayout),
		m.Operator,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movement %s", apperrors.ErrDuplicate, m.MovementID)
		}
		return fmt.Errorf("failed to insert cash movement: %w", err)
	}
	return nil
}

func (r *cashMovementRepository) FindMovementsByDate(ctx context.Context, date string) ([]domain.CashMovement, error) {
	return r.queryMovements(ctx, `SELECT `+movementColumns+`
		FROM movimenti_contanti
		WHERE date = ?
		ORDER BY timestamp ASC, created_at ASC;`, date)
}

func (r *cashMovementRepository) FindRecentMovements(ctx context.Context, limit int) ([]domain.CashMovement, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.queryMovements(ctx, `SELECT `+movementColumns+`
		FROM movimenti_contanti
		ORDER BY timestamp DESC, created_at DESC
		LIMIT ?;`, limit)
}

func (r *cashMovementRepository) queryMovements(ctx context.Context, query string, args ...any) ([]domain.CashMovement, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash movements: %w", err)
	}
	defer rows.Close()

	movements := []domain.CashMovement{}
	for rows.Next() {
		var (
			m                    models.CashMovement
			timestamp, createdAt string
		)
		if err := rows.Scan(
			&m.MovementID,
			&m.Date,
			&m.Kind,
			&m.Amount,
			&m.Description,
			&m.Category,
			&timestamp,
			&m.Operator,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cash movement row: %w", err)
		}
		if m.Timestamp, err = time.ParseInLocation(domain.TimestampLayout, timestamp, r.loc); err != nil {
			return nil, fmt.Errorf("invalid movement timestamp %q: %w", timestamp, err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		movements = append(movements, mapping.ToDomainCashMovement(m, r.loc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash movement rows: %w", err)
	}
	return movements, nil
}

type dailyRecordRepository struct {
	BaseRepository
}

func newDailyRecordRepository(db *sql.DB) portsrepo.DailyRecordRepositoryFacade {
	return &dailyRecordRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.DailyRecordRepositoryFacade = (*dailyRecordRepository)(nil)

const dailyRecordColumns = `date, opening_float, cash_sales, card_sales, other_income, expenses,
	theoretical_float, actual_float, discrepancy, closed, note, closed_at, closed_by, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDailyRecord(row rowScanner) (models.DailyRecord, error) {
	var (
		m         models.DailyRecord
		closedAt  sql.NullString
		closedBy  sql.NullString
		updatedAt string
	)
	if err := row.Scan(
		&m.Date,
		&m.OpeningFloat,
		&m.CashSales,
		&m.CardSales,
		&m.OtherIncome,
		&m.Expenses,
		&m.TheoreticalFloat,
		&m.ActualFloat,
		&m.Discrepancy,
		&m.Closed,
		&m.Note,
		&closedAt,
		&closedBy,
		&updatedAt,
	); err != nil {
		return m, err
	}
	var err error
	if m.ClosedAt, err = parseTimePtr(closedAt); err != nil {
		return m, err
	}
	m.ClosedBy = nullString(closedBy)
	m.UpdatedAt, err = parseTime(updatedAt)
	return m, err
}

func (r *dailyRecordRepository) FindDailyRecord(ctx context.Context, date string) (*domain.DailyCashRecord, error) {
	m, err := scanDailyRecord(r.DB.QueryRowContext(ctx, `SELECT `+dailyRecordColumns+` FROM fondo_cassa WHERE date = ?;`, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find daily record %s: %w", date, err)
	}
	rec := mapping.ToDomainDailyRecord(m)
	return &rec, nil
}

func (r *dailyRecordRepository) ListDailyRecords(ctx context.Context, from, to string) ([]domain.DailyCashRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+dailyRecordColumns+`
		FROM fondo_cassa
		WHERE (? = '' OR date >= ?)
		  AND (? = '' OR date <= ?)
		ORDER BY date DESC;`, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	defer rows.Close()

	records := []domain.DailyCashRecord{}
	for rows.Next() {
		m, err := scanDailyRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily record row: %w", err)
		}
		records = append(records, mapping.ToDomainDailyRecord(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily record rows: %w", err)
	}
	return records, nil
}

func (r *dailyRecordRepository) UpsertDailyRecord(ctx context.Context, record domain.DailyCashRecord) error {
	m := mapping.ToModelDailyRecord(record)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO fondo_cassa (`+dailyRecordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			opening_float = excluded.opening_float,
			cash_sales = excluded.cash_sales,
			card_sales = excluded.card_sales,
			other_income = excluded.other_income,
			expenses = excluded.expenses,
			theoretical_float = excluded.theoretical_float,
			actual_float = excluded.actual_float,
			discrepancy = excluded.discrepancy,
			closed = excluded.closed,
			note = excluded.note,
			closed_at = excluded.closed_at,
			closed_by = excluded.closed_by,
			updated_at = excluded.updated_at;`,
		m.Date,
		m.OpeningFloat,
		m.CashSales,
		m.CardSales,
		m.OtherIncome,
		m.Expenses,
		m.TheoreticalFloat,
		m.ActualFloat,
		m.Discrepancy,
		m.Closed,
		m.Note,
		formatTimePtr(m.ClosedAt),
		m.ClosedBy,
		formatTime(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily record %s: %w", m.Date, err)
	}
	return nil
}
