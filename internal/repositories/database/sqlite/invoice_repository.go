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

type invoiceRepository struct {
	BaseRepository
}

func newInvoiceRepository(db *sql.DB) *invoiceRepository {
	return &invoiceRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*invoiceRepository)(nil)

const invoiceColumns = `f.invoice_id, f.number, f.year, f.client_id, COALESCE(c.business_name, ''), f.date,
	f.subtotal, f.vat, f.total, f.status, f.document_type, f.fiscal_regime, f.reason, f.notes,
	f.payment_method, f.payment_date, f.withholding_tax, f.pension_fund, f.recipient_code, f.recipient_pec,
	f.created_at, f.created_by, f.last_updated_at, f.last_updated_by`

func scanInvoice(row rowScanner) (models.Invoice, error) {
	var (
		m                                     models.Invoice
		paymentMethod, paymentDate, code, pec sql.NullString
		createdAt, lastUpdatedAt              string
	)
	if err := row.Scan(
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
		&paymentMethod,
		&paymentDate,
		&m.WithholdingTax,
		&m.PensionFund,
		&code,
		&pec,
		&createdAt,
		&m.CreatedBy,
		&lastUpdatedAt,
		&m.LastUpdatedBy,
	); err != nil {
		return m, err
	}
	m.PaymentMethod = nullString(paymentMethod)
	m.PaymentDate = nullString(paymentDate)
	m.RecipientCode = nullString(code)
	m.RecipientPEC = nullString(pec)
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	m.LastUpdatedAt, err = parseTime(lastUpdatedAt)
	return m, err
}

func (r *invoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	m, err := scanInvoice(r.DB.QueryRowContext(ctx, `SELECT `+invoiceColumns+`
		FROM fatture f
		LEFT JOIN clienti c ON c.client_id = f.client_id
		WHERE f.invoice_id = ?;`, invoiceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

func (r *invoiceRepository) findLines(ctx context.Context, invoiceID string) ([]models.InvoiceLine, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT line_id, invoice_id, position, description, quantity, unit_of_measure, unit_price,
			discount_percent, vat_rate, vat_code, product_id, line_total
		FROM righe_fatture
		WHERE invoice_id = ?
		ORDER BY position ASC;`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	lines := []models.InvoiceLine{}
	for rows.Next() {
		var (
			l         models.InvoiceLine
			productID sql.NullString
		)
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
			&productID,
			&l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line row: %w", err)
		}
		l.ProductID = nullString(productID)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice line rows: %w", err)
	}
	return lines, nil
}

func (r *invoiceRepository) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Year > 0 {
		conds = append(conds, "f.year = ?")
		args = append(args, filter.Year)
	}
	if filter.Month > 0 {
		conds = append(conds, "substr(f.date, 6, 2) = ?")
		args = append(args, fmt.Sprintf("%02d", filter.Month))
	}
	if filter.Status != "" {
		conds = append(conds, "f.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ClientID != "" {
		conds = append(conds, "f.client_id = ?")
		args = append(args, filter.ClientID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM fatture f`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	query := `SELECT ` + invoiceColumns + `
		FROM fatture f
		LEFT JOIN clienti c ON c.client_id = f.client_id` + where + `
		ORDER BY f.year DESC, f.number DESC`
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, max(filter.Offset, 0))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepository) ListInvoiceDates(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, r.DB, `SELECT date FROM fatture ORDER BY date DESC;`)
}

func nextNumber(ctx context.Context, q querier, year int) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT last_number FROM numerazione_fatture WHERE year = ?), 0),
			COALESCE((SELECT MAX(number) FROM fatture WHERE year = ?), 0)
		) + 1;`, year, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next invoice number: %w", err)
	}
	return n, nil
}

func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context, year int) (int, error) {
	return nextNumber(ctx, r.DB, year)
}

func (r *invoiceRepository) CreateInvoice(ctx context.Context, invoice domain.Invoice) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(tx)

	n, err := nextNumber(ctx, tx, invoice.Year)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO numerazione_fatture (year, last_number) VALUES (?, ?)
		ON CONFLICT (year) DO UPDATE SET last_number = excluded.last_number;`,
		invoice.Year, n); err != nil {
		return 0, apperrors.NewAppError(500, "failed to bump invoice counter", err)
	}

	invoice.Number = n
	m := mapping.ToModelInvoice(invoice)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO fatture (
			invoice_id, number, year, client_id, date, subtotal, vat, total, status,
			document_type, fiscal_regime, reason, notes, payment_method, payment_date,
			withholding_tax, pension_fund, recipient_code, recipient_pec,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		m.InvoiceID,
		m.Number,
		m.Year,
		m.ClientID,
		m.Date,
		m.Subtotal,
		m.VAT,
		m.Total,
		m.Status,
		m.DocumentType,
		m.FiscalRegime,
		m.Reason,
		m.Notes,
		m.PaymentMethod,
		m.PaymentDate,
		m.WithholdingTax,
		m.PensionFund,
		m.RecipientCode,
		m.RecipientPEC,
		formatTime(m.CreatedAt),
		m.CreatedBy,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
	); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: invoice %d/%d", apperrors.ErrDuplicate, m.Number, m.Year)
		}
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: client %s", apperrors.ErrNotFound, m.ClientID)
		}
		return 0, apperrors.NewAppError(500, "failed to insert invoice "+m.InvoiceID, err)
	}
	if err := insertLines(ctx, tx, invoice.Lines); err != nil {
		return 0, err
	}
	if err := r.Commit(tx); err != nil {
		return 0, err
	}
	return n, nil
}

func insertLines(ctx context.Context, tx *sql.Tx, lines []domain.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO righe_fatture (line_id, invoice_id, position, description, quantity, unit_of_measure,
			unit_price, discount_percent, vat_rate, vat_code, product_id, line_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("failed to prepare invoice line insert: %w", err)
	}
	defer stmt.Close()
	for _, line := range lines {
		l := mapping.ToModelInvoiceLine(line)
		if _, err := stmt.ExecContext(ctx,
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
		); err != nil {
			return apperrors.NewAppError(500, "failed to insert invoice line", err)
		}
	}
	return nil
}

func (r *invoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice, replaceLines bool) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(tx)

	m := mapping.ToModelInvoice(invoice)
	res, err := tx.ExecContext(ctx, `
		UPDATE fatture SET
			client_id = ?, date = ?, subtotal = ?, vat = ?, total = ?, status = ?,
			document_type = ?, fiscal_regime = ?, reason = ?, notes = ?,
			payment_method = ?, payment_date = ?, withholding_tax = ?, pension_fund = ?,
			recipient_code = ?, recipient_pec = ?, last_updated_at = ?, last_updated_by = ?
		WHERE invoice_id = ?;`,
		m.ClientID,
		m.Date,
		m.Subtotal,
		m.VAT,
		m.Total,
		m.Status,
		m.DocumentType,
		m.FiscalRegime,
		m.Reason,
		m.Notes,
		m.PaymentMethod,
		m.PaymentDate,
		m.WithholdingTax,
		m.PensionFund,
		m.RecipientCode,
		m.RecipientPEC,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
		m.InvoiceID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: client %s", apperrors.ErrNotFound, m.ClientID)
		}
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if err := expectRow(res, "invoice "+m.InvoiceID); err != nil {
		return err
	}
	if replaceLines {
		if _, err := tx.ExecContext(ctx, `DELETE FROM righe_fatture WHERE invoice_id = ?;`, m.InvoiceID); err != nil {
			return fmt.Errorf("failed to clear invoice lines: %w", err)
		}
		if err := insertLines(ctx, tx, invoice.Lines); err != nil {
			return err
		}
	}
	return r.Commit(tx)
}

func (r *invoiceRepository) DeleteInvoice(ctx context.Context, invoiceID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM fatture WHERE invoice_id = ?;`, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return expectRow(res, "invoice "+invoiceID)
}

func (r *invoiceRepository) InvoiceTotalsByStatus(ctx context.Context, from, to string) (map[domain.InvoiceStatus]portsrepo.StatusTotal, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT status, total FROM fatture
		WHERE (? = '' OR date >= ?) AND (? = '' OR date <= ?);`, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("error querying invoice totals: %w", err)
	}
	defer rows.Close()

	result := make(map[domain.InvoiceStatus]portsrepo.StatusTotal)
	for rows.Next() {
		var (
			status string
			inv    models.Invoice
		)
		if err := rows.Scan(&status, &inv.Total); err != nil {
			return nil, fmt.Errorf("error scanning invoice totals row: %w", err)
		}
		t := result[domain.InvoiceStatus(status)]
		t.Count++
		t.Total = t.Total.Add(inv.Total)
		result[domain.InvoiceStatus(status)] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice totals rows: %w", err)
	}
	return result, nil
}
