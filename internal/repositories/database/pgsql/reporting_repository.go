package pgsql

import (
	"context"
	"fmt"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

func (r *reportingRepository) CardSalesByDate(ctx context.Context, from, to string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), SUM(amount)
		FROM pagamenti_pos
		WHERE ($1::date IS NULL OR date >= $1::date)
		  AND ($2::date IS NULL OR date <= $2::date)
		GROUP BY date
	`
	rows, err := r.Pool.Query(ctx, query, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("error querying card sales: %w", err)
	}
	defer rows.Close()

	result := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			date  string
			total decimal.Decimal
		)
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("error scanning card sales row: %w", err)
		}
		result[date] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card sales rows: %w", err)
	}
	return result, nil
}

func (r *reportingRepository) InvoiceTotalsByStatus(ctx context.Context, from, to string) (map[domain.InvoiceStatus]portsrepo.StatusTotal, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM fatture
		WHERE ($1::date IS NULL OR date >= $1::date)
		  AND ($2::date IS NULL OR date <= $2::date)
		GROUP BY status
	`
	rows, err := r.Pool.Query(ctx, query, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("error querying invoice totals: %w", err)
	}
	defer rows.Close()

	result := make(map[domain.InvoiceStatus]portsrepo.StatusTotal)
	for rows.Next() {
		var (
			status string
			total  portsrepo.StatusTotal
		)
		if err := rows.Scan(&status, &total.Count, &total.Total); err != nil {
			return nil, fmt.Errorf("error scanning invoice totals row: %w", err)
		}
		result[domain.InvoiceStatus(status)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice totals rows: %w", err)
	}
	return result, nil
}
