package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/internal/models"
	"github.com/gestionale-jos/jos_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCashMovementRepository struct {
	BaseRepository
	loc *time.Location
}

func newPgxCashMovementRepository(pool *pgxpool.Pool, loc *time.Location) portsrepo.CashMovementRepositoryFacade {
	if loc == nil {
		loc = time.Local
	}
	return &PgxCashMovementRepository{BaseRepository: BaseRepository{Pool: pool}, loc: loc}
}

var _ portsrepo.CashMovementRepositoryFacade = (*PgxCashMovementRepository)(nil)

const movementColumns = `movement_id, to_char(date, 'YYYY-MM-DD'), kind, amount, description, category, timestamp, operator, created_at`

func (r *PgxCashMovementRepository) AppendMovement(ctx context.Context, movement domain.CashMovement) error {
	m := mapping.ToModelCashMovement(movement)
	query := `
		INSERT INTO movimenti_contanti (movement_id, date, kind, amount, description, category, timestamp, operator, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	// TIMESTAMP columns hold the shop wall clock.
	wall := mapping.WallClock(m.Timestamp.In(r.loc), time.UTC)
	_, err := r.Pool.Exec(ctx, query,
		m.MovementID,
		dateArg(m.Date),
		m.Kind,
		m.Amount,
		m.Description,
		m.Category,
		wall,
		m.Operator,
		m.CreatedAt,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: movement %s", apperrors.ErrDuplicate, m.MovementID)
		}
		return fmt.Errorf("failed to insert cash movement: %w", err)
	}
	return nil
}

func (r *PgxCashMovementRepository) FindMovementsByDate(ctx context.Context, date string) ([]domain.CashMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movimenti_contanti
		WHERE date = $1
		ORDER BY timestamp ASC, created_at ASC;`
	return r.queryMovements(ctx, query, dateArg(date))
}

func (r *PgxCashMovementRepository) FindRecentMovements(ctx context.Context, limit int) ([]domain.CashMovement, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + movementColumns + `
		FROM movimenti_contanti
		ORDER BY timestamp DESC, created_at DESC
		LIMIT $1;`
	return r.queryMovements(ctx, query, limit)
}

func (r *PgxCashMovementRepository) queryMovements(ctx context.Context, query string, args ...any) ([]domain.CashMovement, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash movements: %w", err)
	}
	defer rows.Close()

	movements := []domain.CashMovement{}
	for rows.Next() {
		var m models.CashMovement
		if err := rows.Scan(
			&m.MovementID,
			&m.Date,
			&m.Kind,
			&m.Amount,
			&m.Description,
			&m.Category,
			&m.Timestamp,
			&m.Operator,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cash movement row: %w", err)
		}
		movements = append(movements, mapping.ToDomainCashMovement(m, r.loc))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating cash movement rows: %w", rows.Err())
	}
	return movements, nil
}

type PgxDailyRecordRepository struct {
	BaseRepository
}

func newPgxDailyRecordRepository(pool *pgxpool.Pool) portsrepo.DailyRecordRepositoryFacade {
	return &PgxDailyRecordRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DailyRecordRepositoryFacade = (*PgxDailyRecordRepository)(nil)

const dailyRecordColumns = `to_char(date, 'YYYY-MM-DD'), opening_float, cash_sales, card_sales, other_income, expenses,
	theoretical_float, actual_float, discrepancy, closed, note, closed_at, closed_by, updated_at`

func scanDailyRecord(row pgx.Row) (models.DailyRecord, error) {
	var m models.DailyRecord
	err := row.Scan(
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
		&m.ClosedAt,
		&m.ClosedBy,
		&m.UpdatedAt,
	)
	return m, err
}

func (r *PgxDailyRecordRepository) FindDailyRecord(ctx context.Context, date string) (*domain.DailyCashRecord, error) {
	query := `SELECT ` + dailyRecordColumns + ` FROM fondo_cassa WHERE date = $1;`
	m, err := scanDailyRecord(r.Pool.QueryRow(ctx, query, dateArg(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find daily record %s: %w", date, err)
	}
	rec := mapping.ToDomainDailyRecord(m)
	return &rec, nil
}

func (r *PgxDailyRecordRepository) ListDailyRecords(ctx context.Context, from, to string) ([]domain.DailyCashRecord, error) {
	query := `SELECT ` + dailyRecordColumns + `
		FROM fondo_cassa
		WHERE ($1::date IS NULL OR date >= $1::date)
		  AND ($2::date IS NULL OR date <= $2::date)
		ORDER BY date DESC;`
	rows, err := r.Pool.Query(ctx, query, dateArg(from), dateArg(to))
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating daily record rows: %w", rows.Err())
	}
	return records, nil
}

func (r *PgxDailyRecordRepository) UpsertDailyRecord(ctx context.Context, record domain.DailyCashRecord) error {
	m := mapping.ToModelDailyRecord(record)
	query := `
		INSERT INTO fondo_cassa (
			date, opening_float, cash_sales, card_sales, other_income, expenses,
			theoretical_float, actual_float, discrepancy, closed, note, closed_at, closed_by, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (date) DO UPDATE SET
			opening_float = EXCLUDED.opening_float,
			cash_sales = EXCLUDED.cash_sales,
			card_sales = EXCLUDED.card_sales,
			other_income = EXCLUDED.other_income,
			expenses = EXCLUDED.expenses,
			theoretical_float = EXCLUDED.theoretical_float,
			actual_float = EXCLUDED.actual_float,
			discrepancy = EXCLUDED.discrepancy,
			closed = EXCLUDED.closed,
			note = EXCLUDED.note,
			closed_at = EXCLUDED.closed_at,
			closed_by = EXCLUDED.closed_by,
			updated_at = EXCLUDED.updated_at;
	`
	_, err := r.Pool.Exec(ctx, query,
		dateArg(m.Date),
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
		m.ClosedAt,
		m.ClosedBy,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily record %s: %w", m.Date, err)
	}
	return nil
}
