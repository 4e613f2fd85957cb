package memory

import (
	"context"
	"sort"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) FindCardPaymentByID(ctx context.Context, paymentID string) (*domain.CardPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.cardPayments[paymentID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

// after reports whether p sorts strictly after the keyset position in (date desc, created_at desc, payment_id desc).
func after(p domain.CardPayment, f domain.CardPaymentFilter) bool {
	if f.AfterDate == "" || f.AfterCreatedAt == nil {
		return true
	}
	if p.Date != f.AfterDate {
		return p.Date < f.AfterDate
	}
	if !p.CreatedAt.Equal(*f.AfterCreatedAt) {
		return p.CreatedAt.Before(*f.AfterCreatedAt)
	}
	return p.PaymentID < f.AfterPaymentID
}

func (s *Store) ListCardPayments(ctx context.Context, filter domain.CardPaymentFilter) ([]domain.CardPayment, error) {
	s.mu.RLock()
	var out []domain.CardPayment
	for _, p := range s.cardPayments {
		if filter.Date != "" {
			if p.Date != filter.Date {
				continue
			}
		} else if !inRange(p.Date, filter.From, filter.To) {
			continue
		}
		if !after(p, filter) {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].PaymentID > out[j].PaymentID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) ListCardPaymentDates(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	seen := make(map[string]bool)
	var dates []string
	for _, p := range s.cardPayments {
		if !seen[p.Date] {
			seen[p.Date] = true
			dates = append(dates, p.Date)
		}
	}
	s.mu.RUnlock()
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (s *Store) SaveCardPayment(ctx context.Context, payment domain.CardPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cardPayments[payment.PaymentID]; ok {
		return apperrors.ErrDuplicate
	}
	s.cardPayments[payment.PaymentID] = payment
	return nil
}

func (s *Store) UpdateCardPayment(ctx context.Context, payment domain.CardPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cardPayments[payment.PaymentID]; !ok {
		return apperrors.ErrNotFound
	}
	s.cardPayments[payment.PaymentID] = payment
	return nil
}

func (s *Store) DeleteCardPayment(ctx context.Context, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cardPayments[paymentID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.cardPayments, paymentID)
	return nil
}

func (s *Store) CardSalesByDate(ctx context.Context, from, to string) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]decimal.Decimal)
	for _, p := range s.cardPayments {
		if inRange(p.Date, from, to) {
			out[p.Date] = out[p.Date].Add(p.Amount)
		}
	}
	return out, nil
}
