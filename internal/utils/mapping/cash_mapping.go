package mapping

import (
	"time"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/models"
)

// WallClock re-reads the fields of t as a time in loc. Stores keep shop timestamps
// without a zone, so drivers hand them back in UTC.
func WallClock(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// ToModelCashMovement converts a domain CashMovement to a model CashMovement
func ToModelCashMovement(d domain.CashMovement) models.CashMovement {
	return models.CashMovement{
		MovementID:  d.MovementID,
		Date:        d.Date,
		Kind:        string(d.Kind),
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Timestamp:   d.Timestamp,
		Operator:    d.Operator,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// ToDomainCashMovement converts a model CashMovement to a domain CashMovement in the shop location
func ToDomainCashMovement(m models.CashMovement, loc *time.Location) domain.CashMovement {
	return domain.CashMovement{
		MovementID:  m.MovementID,
		Date:        m.Date,
		Kind:        domain.MovementKind(m.Kind),
		Amount:      m.Amount,
		Description: m.Description,
		Category:    m.Category,
		Timestamp:   WallClock(m.Timestamp, loc),
		Operator:    m.Operator,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

// ToModelDailyRecord converts a domain DailyCashRecord to a model DailyRecord
func ToModelDailyRecord(d domain.DailyCashRecord) models.DailyRecord {
	return models.DailyRecord{
		Date:             d.Date,
		OpeningFloat:     d.OpeningFloat,
		CashSales:        d.CashSales,
		CardSales:        d.CardSales,
		OtherIncome:      d.OtherIncome,
		Expenses:         d.Expenses,
		TheoreticalFloat: d.TheoreticalFloat,
		ActualFloat:      d.ActualFloat,
		Discrepancy:      d.Discrepancy,
		Closed:           d.Closed,
		Note:             d.Note,
		ClosedAt:         d.ClosedAt,
		ClosedBy:         d.ClosedBy,
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

// ToDomainDailyRecord converts a model DailyRecord to a domain DailyCashRecord
func ToDomainDailyRecord(m models.DailyRecord) domain.DailyCashRecord {
	rec := domain.DailyCashRecord{
		Date:             m.Date,
		OpeningFloat:     m.OpeningFloat,
		CashSales:        m.CashSales,
		CardSales:        m.CardSales,
		OtherIncome:      m.OtherIncome,
		Expenses:         m.Expenses,
		TheoreticalFloat: m.TheoreticalFloat,
		ActualFloat:      m.ActualFloat,
		Discrepancy:      m.Discrepancy,
		Closed:           m.Closed,
		Note:             m.Note,
		ClosedBy:         m.ClosedBy,
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
	if m.ClosedAt != nil {
		closedAt := m.ClosedAt.UTC()
		rec.ClosedAt = &closedAt
	}
	return rec
}

// ToModelCardPayment converts a domain CardPayment to a model CardPayment
func ToModelCardPayment(d domain.CardPayment) models.CardPayment {
	return models.CardPayment{
		PaymentID:   d.PaymentID,
		Date:        d.Date,
		Amount:      d.Amount,
		Description: d.Description,
		Note:        d.Note,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCardPayment converts a model CardPayment to a domain CardPayment
func ToDomainCardPayment(m models.CardPayment) domain.CardPayment {
	return domain.CardPayment{
		PaymentID:   m.PaymentID,
		Date:        m.Date,
		Amount:      m.Amount,
		Description: m.Description,
		Note:        m.Note,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
