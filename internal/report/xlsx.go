package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

const (
	summarySheet = "Riepilogo"
	daysSheet    = "Giornaliero"
	// builtin "#,##0.00"
	amountNumFmt = 4
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func amount(v decimal.Decimal) float64 {
	return v.Round(2).InexactFloat64()
}

func optionalAmount(v *decimal.Decimal) any {
	if v == nil {
		return nil
	}
	return amount(*v)
}

// MonthlyXLSX writes the monthly cash report to w as a workbook with a summary
// sheet and a per-day sheet.
func MonthlyXLSX(w io.Writer, issuer Issuer, rep domain.MonthlyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(daysSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return err
	}

	summary := [][]any{
		{issuer.Name},
		{"Resoconto Mensile", MonthName(rep.Month) + " " + itoa(rep.Year)},
		{generatedAt(rep.GeneratedAt)},
		{},
		{"Giorni chiusi", rep.DaysClosed},
		{"Vendite contanti", amount(rep.TotalCashSales)},
		{"Vendite carta", amount(rep.TotalCardSales)},
		{"Altre entrate", amount(rep.TotalOtherIncome)},
		{"Uscite", amount(rep.TotalExpenses)},
		{"Totale entrate", amount(rep.TotalIncome)},
		{"Differenze totali", amount(rep.TotalDiscrepancy)},
		{"Media giornaliera", amount(rep.DailyAverage)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A2", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "B6", "B12", money); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}

	header := []any{"Data", "Fondo iniziale", "Contanti", "Carta", "Altre", "Uscite", "Totale entrate", "Teorico", "Reale", "Differenza", "Chiusa", "Note"}
	if err := f.SetSheetRow(daysSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(daysSheet, "A1", "L1", bold); err != nil {
		return err
	}
	for i, day := range rep.Days {
		closed := "No"
		if day.Closed {
			closed = "Sì"
		}
		row := []any{
			ItalianDate(day.Date),
			amount(day.OpeningFloat),
			amount(day.CashSales),
			amount(day.CardSales),
			amount(day.OtherIncome),
			amount(day.Expenses),
			amount(day.TotalIncome),
			amount(day.TheoreticalFloat),
			optionalAmount(day.ActualFloat),
			optionalAmount(day.Discrepancy),
			closed,
			day.Note,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(daysSheet, cell, &row); err != nil {
			return fmt.Errorf("write day %s: %w", day.Date, err)
		}
	}
	if len(rep.Days) > 0 {
		last, _ := excelize.CoordinatesToCellName(10, len(rep.Days)+1)
		if err := f.SetCellStyle(daysSheet, "B2", last, money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(daysSheet, "A", "K", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(daysSheet, "L", "L", 40); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}
