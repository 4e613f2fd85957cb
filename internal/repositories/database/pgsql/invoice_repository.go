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

type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `f.invoice_id, f.number, f.year, f.client_id, COALESCE(c.business_name, ''), to_char(f.date, 'YYYY-MM-DD'),
	f.subtotal, f.vat, f.total, f.status, f.document_type, f.fiscal_regime, f.reason, f.notes,
	f.payment_method, to_char(f.payment_date, 'YYYY-MM-DD'), f.withholding_tax, f.pension_fund,
	f.recipient_code, f.recipient_pec, f.created_at, f.created_by, f.last_updated_at, f.last_updated_by`

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.Number,
		&m.Year,
		&m.ClientID,
		&m.ClientName,
		&m.Date,
		&m.Subtotal,
		&m.VAT,
		&m.Total,
		&m.Status,
		&m.DocumentType,
		&m.FiscalRegime,
		&m.Reason,
		&m.Notes,
		&m.PaymentMethod,
		&m.PaymentDate,
		&m.WithholdingTax,
		&m.PensionFund,
		&m.RecipientCode,
		&m.RecipientPEC,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM fatture f
		LEFT JOIN clienti c ON c.client_id = f.client_id
		WHERE f.invoice_id = $1;`
	m, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}

	lines, err := r.findLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	invoice := mapping.ToDomainInvoice(m, lines)
	return &invoice, nil
}

func (r *PgxInvoiceRepository) findLines(ctx context.Context, invoiceID string) ([]models.InvoiceLine, error) {
	query := `
		SELECT line_id, invoice_id, position, description, quantity, unit_of_measure, unit_price,
			discount_percent, vat_rate, vat_code, product_id, line_total
		FROM righe_fatture
		WHERE invoice_id = $1
		ORDER BY position ASC;
	`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	lines := []models.InvoiceLine{}
	for rows.Next() {
		var l models.InvoiceLine
		if err := rows.Scan(
			&l.LineID,
			&l.InvoiceID,
			&l.Position,
			&l.Description,
			&l.Quantity,
			&l.UnitOfMeasure,
			&l.UnitPrice,
			&l.DiscountPercent,
			&l.VATRate,
			&l.VATCode,
			&l.ProductID,
			&l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line row: %w", err)
		}
		lines = append(lines, l)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating invoice line rows: %w", rows.Err())
	}
	return lines, nil
}

func invoiceFilterClause(filter domain.InvoiceFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Year > 0 {
		conds = append(conds, "f.year = "+arg(filter.Year))
	}
	if filter.Month > 0 {
		conds = append(conds, "EXTRACT(MONTH FROM f.date) = "+arg(filter.Month))
	}
	if filter.Status != "" {
		conds = append(conds, "f.status = "+arg(string(filter.Status)))
	}
	if filter.ClientID != "" {
		conds = append(conds, "f.client_id = "+arg(filter.ClientID))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	where, args := invoiceFilterClause(filter)

	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM fatture f`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	query := `SELECT ` + invoiceColumns + `
		FROM fatture f
		LEFT JOIN clienti c ON c.client_id = f.client_id` + where + `
		ORDER BY f.year DESC, f.number DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, mapping.ToDomainInvoice(m, nil))
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating invoice rows: %w", rows.Err())
	}
	return invoices, total, nil
}

func (r *PgxInvoiceRepository) ListInvoiceDates(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT to_char(date, 'YYYY-MM-DD') FROM fatture ORDER BY date DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice dates: %w", err)
	}
	dates, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect invoice dates: %w", err)
	}
	return dates, nil
}

// NextInvoiceNumber is a preview; the number is only reserved by CreateInvoice.
func (r *PgxInvoiceRepository) NextInvoiceNumber(ctx context.Context, year int) (int, error) {
	query := `
		SELECT GREATEST(
			COALESCE((SELECT last_number FROM numerazione_fatture WHERE year = $1), 0),
			COALESCE((SELECT MAX(number) FROM fatture WHERE year = $1), 0)
		) + 1;
	`
	var n int
	if err := r.Pool.QueryRow(ctx, query, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to compute next invoice number: %w", err)
	}
	return n, nil
}

func (r *PgxInvoiceRepository) CreateInvoice(ctx context.Context, invoice domain.Invoice) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	// The counter row lock serialises concurrent creations for the same year.
	if _, err := tx.Exec(ctx,
		`INSERT INTO numerazione_fatture (year, last_number) VALUES ($1, 0) ON CONFLICT (year) DO NOTHING;`,
		invoice.Year); err != nil {
		return 0, apperrors.NewAppError(500, "failed to init invoice counter", err)
	}
	var counter int
	if err := tx.QueryRow(ctx,
		`SELECT last_number FROM numerazione_fatture WHERE year = $1 FOR UPDATE;`,
		invoice.Year).Scan(&counter); err != nil {
		return 0, apperrors.NewAppError(500, "failed to lock invoice counter", err)
	}
	var maxNumber int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(number), 0) FROM fatture WHERE year = $1;`,
		invoice.Year).Scan(&maxNumber); err != nil {
		return 0, apperrors.NewAppError(500, "failed to read invoice numbers", err)
	}
	n := max(counter, maxNumber) + 1
	if _, err := tx.Exec(ctx,
		`UPDATE numerazione_fatture SET last_number = $1 WHERE year = $2;`,
		n, invoice.Year); err != nil {
		return 0, apperrors.NewAppError(500, "failed to bump invoice counter", err)
	}

	invoice.Number = n
	m := mapping.ToModelInvoice(invoice)
	query := `
		INSERT INTO fatture (
			invoice_id, number, year, client_id, date, subtotal, vat, total, status,
			document_type, fiscal_regime, reason, notes, payment_method, payment_date,
			withholding_tax, pension_fund, recipient_code, recipient_pec,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	if _, err := tx.Exec(ctx, query,
		m.InvoiceID,
		m.Number,
		m.Year,
		m.ClientID,
		dateArg(m.Date),
		m.Subtotal,
		m.VAT,
		m.Total,
		m.Status,
		m.DocumentType,
		m.FiscalRegime,
		m.Reason,
		m.Notes,
		m.PaymentMethod,
		optionalDateArg(m.PaymentDate),
		m.WithholdingTax,
		m.PensionFund,
		m.RecipientCode,
		m.RecipientPEC,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	); err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return 0, fmt.Errorf("%w: invoice %d/%d", apperrors.ErrDuplicate, m.Number, m.Year)
		}
		if hasPgCode(err, pgForeignKeyViolation) {
			return 0, fmt.Errorf("%w: client %s", apperrors.ErrNotFound, m.ClientID)
		}
		return 0, apperrors.NewAppError(500, "failed to insert invoice "+m.InvoiceID, err)
	}

	if err := insertLines(ctx, tx, invoice.Lines); err != nil {
		return 0, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return n, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO righe_fatture (line_id, invoice_id, position, description, quantity, unit_of_measure,
			unit_price, discount_percent, vat_rate, vat_code, product_id, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, line := range lines {
		l := mapping.ToModelInvoiceLine(line)
		batch.Queue(query,
			l.LineID,
			l.InvoiceID,
			l.Position,
			l.Description,
			l.Quantity,
			l.UnitOfMeasure,
			l.UnitPrice,
			l.DiscountPercent,
			l.VATRate,
			l.VATCode,
			l.ProductID,
			l.LineTotal,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return apperrors.NewAppError(500, "failed to insert invoice line", err)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close invoice line batch", err)
	}
	return nil
}

// UpdateInvoice never touches number and year.
func (r *PgxInvoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice, replaceLines bool) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelInvoice(invoice)
	query := `
		UPDATE fatture SET
			client_id = $1, date = $2, subtotal = $3, vat = $4, total = $5, status = $6,
			document_type = $7, fiscal_regime = $8, reason = $9, notes = $10,
			payment_method = $11, payment_date = $12, withholding_tax = $13, pension_fund = $14,
			recipient_code = $15, recipient_pec = $16, last_updated_at = $17, last_updated_by = $18
		WHERE invoice_id = $19;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ClientID,
		dateArg(m.Date),
		m.Subtotal,
		m.VAT,
		m.Total,
		m.Status,
		m.DocumentType,
		m.FiscalRegime,
		m.Reason,
		m.Notes,
		m.PaymentMethod,
		optionalDateArg(m.PaymentDate),
		m.WithholdingTax,
		m.PensionFund,
		m.RecipientCode,
		m.RecipientPEC,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.InvoiceID,
	)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: client %s", apperrors.ErrNotFound, m.ClientID)
		}
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", m.InvoiceID, apperrors.ErrNotFound)
	}

	if replaceLines {
		if _, err := tx.Exec(ctx, `DELETE FROM righe_fatture WHERE invoice_id = $1;`, m.InvoiceID); err != nil {
			return fmt.Errorf("failed to clear invoice lines: %w", err)
		}
		if err := insertLines(ctx, tx, invoice.Lines); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

// DeleteInvoice removes the invoice; lines go with it by cascade. The year counter is left alone.
func (r *PgxInvoiceRepository) DeleteInvoice(ctx context.Context, invoiceID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM fatture WHERE invoice_id = $1;`, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", invoiceID, apperrors.ErrNotFound)
	}
	return nil
}
