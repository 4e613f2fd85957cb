package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

func (s *Store) AppendMovement(ctx context.Context, movement domain.CashMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movements {
		if m.MovementID == movement.MovementID {
			return fmt.Errorf("%w: movement %s", apperrors.ErrDuplicate, movement.MovementID)
		}
	}
	s.movements = append(s.movements, movement)
	return nil
}

func (s *Store) FindMovementsByDate(ctx context.Context, date string) ([]domain.CashMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CashMovement
	for _, m := range s.movements {
		if m.Date == date {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) FindRecentMovements(ctx context.Context, limit int) ([]domain.CashMovement, error) {
	s.mu.RLock()
	out := make([]domain.CashMovement, len(s.movements))
	copy(out, s.movements)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FindDailyRecord(ctx context.Context, date string) (*domain.DailyCashRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.dailyRecords[date]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) ListDailyRecords(ctx context.Context, from, to string) ([]domain.DailyCashRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DailyCashRecord
	for date, rec := range s.dailyRecords {
		if inRange(date, from, to) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) UpsertDailyRecord(ctx context.Context, record domain.DailyCashRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyRecords[record.Date] = record
	return nil
}
