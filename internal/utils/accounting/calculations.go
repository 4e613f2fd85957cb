package accounting

import (
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

const currencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// TheoreticalFloat is what the drawer should hold by calculation.
// Card sales are settled outside the drawer and do not take part.
func TheoreticalFloat(openingFloat, cashSales, otherIncome, expenses decimal.Decimal) decimal.Decimal {
	return openingFloat.Add(cashSales).Add(otherIncome).Sub(expenses)
}

// Discrepancy is the counted float minus the theoretical one.
func Discrepancy(actualFloat, theoreticalFloat decimal.Decimal) decimal.Decimal {
	return actualFloat.Sub(theoreticalFloat)
}

// SumMovements sums the movements of the given kind. An empty set sums to zero.
func SumMovements(movements []domain.CashMovement, kind domain.MovementKind) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range movements {
		if m.Kind == kind {
			sum = sum.Add(m.Amount)
		}
	}
	return sum
}

// HasOpening reports whether an opening float was recorded among movements.
func HasOpening(movements []domain.CashMovement) bool {
	for _, m := range movements {
		if m.Kind == domain.MovementOpeningFloat {
			return true
		}
	}
	return false
}

// SumCardPayments sums card payment amounts. An empty set sums to zero.
func SumCardPayments(payments []domain.CardPayment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// ProjectDailyRecord derives the open-day figures of date from its movements and card payments.
// Other income only exists on the stored record, so it is carried over from stored when present.
func ProjectDailyRecord(date string, movements []domain.CashMovement, payments []domain.CardPayment, stored *domain.DailyCashRecord) domain.DailyCashRecord {
	rec := domain.DailyCashRecord{
		Date:         date,
		OpeningFloat: SumMovements(movements, domain.MovementOpeningFloat),
		CashSales:    SumMovements(movements, domain.MovementIncome),
		CardSales:    SumCardPayments(payments),
		OtherIncome:  decimal.Zero,
		Expenses:     SumMovements(movements, domain.MovementExpense),
	}
	if stored != nil {
		rec.OtherIncome = stored.OtherIncome
		rec.Note = stored.Note
		rec.Closed = stored.Closed
		rec.ActualFloat = stored.ActualFloat
		rec.Discrepancy = stored.Discrepancy
		rec.ClosedAt = stored.ClosedAt
		rec.ClosedBy = stored.ClosedBy
	}
	rec.TheoreticalFloat = TheoreticalFloat(rec.OpeningFloat, rec.CashSales, rec.OtherIncome, rec.Expenses)
	return rec
}

// InvoiceTotals are the derived amounts of an invoice, rounded to cents.
type InvoiceTotals struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal is quantity × unit price less the percentage discount, unrounded.
func LineTotal(line domain.InvoiceLine) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(line.DiscountPercent.Div(hundred))
	return line.Quantity.Mul(line.UnitPrice).Mul(factor)
}

// LineVAT is the VAT due on a single line, unrounded.
func LineVAT(line domain.InvoiceLine) decimal.Decimal {
	return LineTotal(line).Mul(line.VATRate).Div(hundred)
}

// ComputeInvoiceTotals sums lines and their per-line VAT. Rounding happens once, at the end.
func ComputeInvoiceTotals(lines []domain.InvoiceLine) InvoiceTotals {
	subtotal := decimal.Zero
	vat := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(LineTotal(line))
		vat = vat.Add(LineVAT(line))
	}
	total := subtotal.Add(vat)
	return InvoiceTotals{
		Subtotal: subtotal.Round(currencyPlaces),
		VAT:      vat.Round(currencyPlaces),
		Total:    total.Round(currencyPlaces),
	}
}

// ApplyInvoiceTotals fills the derived line totals and invoice amounts in place.
func ApplyInvoiceTotals(inv *domain.Invoice) {
	for i := range inv.Lines {
		inv.Lines[i].LineTotal = LineTotal(inv.Lines[i]).Round(currencyPlaces)
	}
	totals := ComputeInvoiceTotals(inv.Lines)
	inv.Subtotal = totals.Subtotal
	inv.VAT = totals.VAT
	inv.Total = totals.Total
}
