package domain

import (
	"fmt"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
)

const (
	// DateLayout is the storage format of business dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is the storage format of shop-local wall clock timestamps.
	TimestampLayout = "2006-01-02 15:04:05"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// ParseDate parses a YYYY-MM-DD business date in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", apperrors.ErrValidation, date)
	}
	return t, nil
}

// ValidateDate checks that date is a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	_, err := ParseDate(date, time.UTC)
	return err
}

// DateOf returns the business date of t as seen in loc.
func DateOf(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}

// MonthRange returns the first and last business dates of a calendar month.
func MonthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}
