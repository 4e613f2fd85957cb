package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
)

func copyInvoice(inv domain.Invoice, withLines bool) domain.Invoice {
	if withLines {
		inv.Lines = append([]domain.InvoiceLine(nil), inv.Lines...)
	} else {
		inv.Lines = nil
	}
	return inv
}

func (s *Store) clientName(clientID string) string {
	if c, ok := s.clients[clientID]; ok {
		return c.BusinessName
	}
	return ""
}

func (s *Store) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := copyInvoice(inv, true)
	out.ClientName = s.clientName(inv.ClientID)
	return &out, nil
}

func invoiceMatches(inv domain.Invoice, f domain.InvoiceFilter) bool {
	if f.Year != 0 && inv.Year != f.Year {
		return false
	}
	if f.Month != 0 && (len(inv.Date) < 7 || inv.Date[5:7] != fmt.Sprintf("%02d", f.Month)) {
		return false
	}
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	if f.ClientID != "" && inv.ClientID != f.ClientID {
		return false
	}
	return true
}

func (s *Store) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	s.mu.RLock()
	var out []domain.Invoice
	for _, inv := range s.invoices {
		if invoiceMatches(inv, filter) {
			c := copyInvoice(inv, false)
			c.ClientName = s.clientName(inv.ClientID)
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Number > out[j].Number
	})
	total := len(out)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = nil
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (s *Store) ListInvoiceDates(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.invoices))
	for _, inv := range s.invoices {
		dates = append(dates, inv.Date)
	}
	return dates, nil
}

// nextNumber must be called with the lock held.
func (s *Store) nextNumber(year int) int {
	n := s.invoiceCounter[year]
	for _, inv := range s.invoices {
		if inv.Year == year && inv.Number > n {
			n = inv.Number
		}
	}
	return n + 1
}

func (s *Store) NextInvoiceNumber(ctx context.Context, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextNumber(year), nil
}

func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[invoice.InvoiceID]; ok {
		return 0, apperrors.ErrDuplicate
	}
	n := s.nextNumber(invoice.Year)
	s.invoiceCounter[invoice.Year] = n
	invoice.Number = n
	s.invoices[invoice.InvoiceID] = copyInvoice(invoice, true)
	return n, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, invoice domain.Invoice, replaceLines bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.invoices[invoice.InvoiceID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !replaceLines {
		invoice.Lines = stored.Lines
	}
	invoice.Number = stored.Number
	invoice.Year = stored.Year
	s.invoices[invoice.InvoiceID] = copyInvoice(invoice, true)
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[invoiceID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.invoices, invoiceID)
	return nil
}

func (s *Store) InvoiceTotalsByStatus(ctx context.Context, from, to string) (map[domain.InvoiceStatus]portsrepo.StatusTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.InvoiceStatus]portsrepo.StatusTotal)
	for _, inv := range s.invoices {
		if !inRange(inv.Date, from, to) {
			continue
		}
		t := out[inv.Status]
		t.Count++
		t.Total = t.Total.Add(inv.Total)
		out[inv.Status] = t
	}
	return out, nil
}

func (s *Store) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func contains(v *string, q string) bool {
	return v != nil && strings.Contains(strings.ToLower(*v), q)
}

func (s *Store) ListClients(ctx context.Context, search string) ([]domain.Client, error) {
	q := strings.ToLower(strings.TrimSpace(search))
	s.mu.RLock()
	var out []domain.Client
	for _, c := range s.clients {
		if q == "" || strings.Contains(strings.ToLower(c.BusinessName), q) || contains(c.VATNumber, q) || contains(c.TaxCode, q) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].BusinessName) < strings.ToLower(out[j].BusinessName)
	})
	return out, nil
}

func (s *Store) SaveClient(ctx context.Context, client domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ClientID]; ok {
		return apperrors.ErrDuplicate
	}
	s.clients[client.ClientID] = client
	return nil
}

func (s *Store) UpdateClient(ctx context.Context, client domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ClientID]; !ok {
		return apperrors.ErrNotFound
	}
	s.clients[client.ClientID] = client
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[clientID]; !ok {
		return apperrors.ErrNotFound
	}
	for _, inv := range s.invoices {
		if inv.ClientID == clientID {
			return fmt.Errorf("%w: client %s is referenced by invoices", apperrors.ErrDuplicate, clientID)
		}
	}
	delete(s.clients, clientID)
	return nil
}
