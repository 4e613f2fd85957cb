package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/report"
)

var issuer = report.Issuer{
	Name:      "Rosticceria Jos",
	Address:   "Via Roma 1, 90100 Palermo (PA)",
	VATNumber: "12345678903",
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleMonth() domain.MonthlyReport {
	actual, diff := d("225"), d("-5")
	return domain.MonthlyReport{
		Year:             2024,
		Month:            5,
		DaysClosed:       1,
		TotalCashSales:   d("50"),
		TotalCardSales:   d("35"),
		TotalOtherIncome: decimal.Zero,
		TotalExpenses:    d("20"),
		TotalIncome:      d("85"),
		TotalDiscrepancy: diff,
		DailyAverage:     d("85"),
		GeneratedAt:      time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Days: []domain.DailyReportRow{
			{
				Date: "2024-05-10", OpeningFloat: d("200"), CashSales: d("50"), CardSales: d("35"),
				OtherIncome: decimal.Zero, Expenses: d("20"), TotalIncome: d("85"),
				TheoreticalFloat: d("230"), ActualFloat: &actual, Discrepancy: &diff,
				Closed: true, Note: "pioggia, poca gente",
			},
			{
				Date: "2024-05-11", OpeningFloat: d("200"), CashSales: decimal.Zero, CardSales: decimal.Zero,
				OtherIncome: decimal.Zero, Expenses: decimal.Zero, TotalIncome: decimal.Zero,
				TheoreticalFloat: d("200"),
			},
		},
	}
}

func TestMonthlyPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.MonthlyPDF(&buf, issuer, sampleMonth()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestMonthlyXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.MonthlyXLSX(&buf, issuer, sampleMonth()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Riepilogo", "Giornaliero"}, f.GetSheetList())
	date, err := f.GetCellValue("Giornaliero", "A2")
	require.NoError(t, err)
	assert.Equal(t, "10/05/2024", date)
	note, err := f.GetCellValue("Giornaliero", "L2")
	require.NoError(t, err)
	assert.Equal(t, "pioggia, poca gente", note)
}

func TestInvoicePDF(t *testing.T) {
	vat := "12345678903"
	inv := domain.Invoice{
		Number: 7, Year: 2024, Date: "2024-03-15", Status: domain.InvoiceIssued,
		DocumentType: "TD01", FiscalRegime: "RF01", ClientName: "Bar Centrale",
		Lines: []domain.InvoiceLine{{
			Description: "Pollo arrosto", Quantity: d("2"), UnitOfMeasure: "pz",
			UnitPrice: d("10"), DiscountPercent: decimal.Zero, VATRate: d("10"), LineTotal: d("20"),
		}},
		Subtotal: d("20"), VAT: d("2"), Total: d("22"),
	}

	var withClient bytes.Buffer
	require.NoError(t, report.InvoicePDF(&withClient, issuer, inv, &domain.Client{BusinessName: "Bar Centrale", VATNumber: &vat}))
	assert.True(t, bytes.HasPrefix(withClient.Bytes(), []byte("%PDF")))

	var orphan bytes.Buffer
	require.NoError(t, report.InvoicePDF(&orphan, issuer, inv, nil))
	assert.True(t, bytes.HasPrefix(orphan.Bytes(), []byte("%PDF")))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "Maggio", report.MonthName(5))
	assert.Equal(t, "15/03/2024", report.ItalianDate("2024-03-15"))
	assert.Equal(t, "bad", report.ItalianDate("bad"))
	assert.Equal(t, "resoconto-2024-05.xlsx", report.MonthlyFilename(2024, 5, "xlsx"))
	assert.Equal(t, "fattura-2024-7.pdf", report.InvoiceFilename(domain.Invoice{Year: 2024, Number: 7}))
}
