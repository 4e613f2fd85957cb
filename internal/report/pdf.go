package report

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/utils"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

// document wraps fpdf with the cp1252 translator so that "€" and accented letters print
// with the core fonts.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(footer string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, d.tr(footer), "", 0, "L", false, 0, "")
		pdf.SetX(pageMargin)
		pdf.CellFormat(0, 5, "Pagina "+itoa(pdf.PageNo())+" di {nb}", "", 0, "R", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *document) font(style string, size float64) {
	d.pdf.SetFont("Helvetica", style, size)
}

func (d *document) cell(w float64, text, align string) {
	d.pdf.CellFormat(w, lineHeight, d.tr(text), "", 0, align, false, 0, "")
}

func (d *document) line(text string) {
	d.pdf.CellFormat(0, lineHeight, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) header(cols []string, widths []float64) {
	d.font("B", 9)
	d.pdf.SetFillColor(230, 230, 230)
	for i, col := range cols {
		align := "R"
		if i == 0 {
			align = "L"
		}
		d.pdf.CellFormat(widths[i], 7, d.tr(col), "1", 0, align, true, 0, "")
	}
	d.pdf.Ln(-1)
	d.font("", 9)
}

func (d *document) row(vals []string, widths []float64) {
	for i, v := range vals {
		align := "R"
		if i == 0 {
			align = "L"
		}
		d.pdf.CellFormat(widths[i], lineHeight, d.tr(v), "1", 0, align, false, 0, "")
	}
	d.pdf.Ln(-1)
}

func (d *document) issuerBlock(issuer Issuer) {
	d.font("B", 14)
	d.line(issuer.Name)
	d.font("", 9)
	if issuer.Address != "" {
		d.line(issuer.Address)
	}
	if issuer.VATNumber != "" {
		d.line("P.IVA: " + issuer.VATNumber)
	}
	if issuer.TaxCode != "" && issuer.TaxCode != issuer.VATNumber {
		d.line("C.F.: " + issuer.TaxCode)
	}
	d.pdf.Ln(4)
}

func (d *document) output(w io.Writer) error {
	if d.pdf.Err() {
		return d.pdf.Error()
	}
	return d.pdf.Output(w)
}

func generatedAt(t time.Time) string {
	return "Generato il " + t.Format("02/01/2006") + " alle " + t.Format("15:04")
}

func euro(amount decimal.Decimal) string {
	return utils.FormatEuro(amount)
}

func optionalEuro(amount *decimal.Decimal) string {
	if amount == nil {
		return "-"
	}
	return euro(*amount)
}

// InvoicePDF writes a printable copy of inv to w. client may be nil when the
// recipient has been removed; the stored client name is printed instead.
func InvoicePDF(w io.Writer, issuer Issuer, inv domain.Invoice, client *domain.Client) error {
	d := newDocument("Documento generato da " + issuer.Name)
	d.issuerBlock(issuer)

	d.font("B", 13)
	d.line("FATTURA N. " + inv.FullNumber())
	d.font("", 9)
	d.line("Stato: " + string(inv.Status))
	d.pdf.Ln(3)

	top := d.pdf.GetY()
	d.font("B", 10)
	d.line("DESTINATARIO")
	d.font("", 9)
	if client != nil {
		d.line(client.BusinessName)
		if client.Address != "" {
			d.line(client.Address)
		}
		if client.City != "" {
			d.line(client.ZipCode + " " + client.City + " (" + client.Province + ")")
		}
		if client.VATNumber != nil {
			d.line("P.IVA: " + *client.VATNumber)
		}
		if client.TaxCode != nil {
			d.line("C.F.: " + *client.TaxCode)
		}
	} else {
		d.line(inv.ClientName)
	}
	if inv.RecipientCode != nil {
		d.line("Codice Destinatario: " + *inv.RecipientCode)
	}
	if inv.RecipientPEC != nil {
		d.line("PEC: " + *inv.RecipientPEC)
	}
	bottom := d.pdf.GetY()

	d.pdf.SetXY(120, top)
	details := []string{
		"Data: " + ItalianDate(inv.Date),
		"Tipo documento: " + inv.DocumentType,
		"Regime fiscale: " + inv.FiscalRegime,
	}
	if inv.PaymentMethod != nil {
		details = append(details, "Pagamento: "+*inv.PaymentMethod)
	}
	if inv.PaymentDate != nil {
		details = append(details, "Pagata il: "+ItalianDate(*inv.PaymentDate))
	}
	for _, s := range details {
		d.pdf.SetX(120)
		d.line(s)
	}
	if d.pdf.GetY() < bottom {
		d.pdf.SetY(bottom)
	}
	if inv.Reason != "" {
		d.pdf.Ln(2)
		d.pdf.MultiCell(0, 5, d.tr("Causale: "+inv.Reason), "", "L", false)
	}
	d.pdf.Ln(4)

	widths := []float64{70, 18, 14, 24, 14, 16, 24}
	d.header([]string{"Descrizione", "Q.tà", "U.M.", "Prezzo", "Sc.", "IVA", "Importo"}, widths)
	for _, l := range inv.Lines {
		d.row([]string{
			l.Description,
			l.Quantity.String(),
			l.UnitOfMeasure,
			euro(l.UnitPrice),
			utils.FormatPercent(l.DiscountPercent),
			utils.FormatPercent(l.VATRate),
			euro(l.LineTotal),
		}, widths)
	}
	d.pdf.Ln(4)

	totals := [][2]string{
		{"Imponibile", euro(inv.Subtotal)},
		{"IVA", euro(inv.VAT)},
	}
	if inv.WithholdingTax != nil && !inv.WithholdingTax.IsZero() {
		totals = append(totals, [2]string{"Ritenuta d'acconto", euro(*inv.WithholdingTax)})
	}
	if inv.PensionFund != nil && !inv.PensionFund.IsZero() {
		totals = append(totals, [2]string{"Cassa previdenziale", euro(*inv.PensionFund)})
	}
	for _, t := range totals {
		d.pdf.SetX(120)
		d.font("", 10)
		d.cell(40, t[0], "L")
		d.cell(0, t[1], "R")
		d.pdf.Ln(-1)
	}
	d.pdf.SetX(120)
	d.font("B", 11)
	d.cell(40, "TOTALE", "L")
	d.cell(0, euro(inv.Total), "R")
	d.pdf.Ln(-1)

	if inv.Notes != "" {
		d.pdf.Ln(6)
		d.font("B", 9)
		d.line("Note")
		d.font("", 9)
		d.pdf.MultiCell(0, 5, d.tr(inv.Notes), "", "L", false)
	}
	return d.output(w)
}

// MonthlyPDF writes the monthly cash report to w.
func MonthlyPDF(w io.Writer, issuer Issuer, rep domain.MonthlyReport) error {
	d := newDocument("Generato da " + issuer.Name)
	d.issuerBlock(issuer)

	d.font("B", 14)
	d.pdf.CellFormat(0, 8, d.tr("Resoconto Mensile - "+MonthName(rep.Month)+" "+itoa(rep.Year)), "", 1, "C", false, 0, "")
	d.font("", 9)
	d.pdf.CellFormat(0, 5, d.tr(generatedAt(rep.GeneratedAt)), "", 1, "C", false, 0, "")
	d.pdf.Ln(4)

	d.font("B", 11)
	d.line("Riepilogo Mensile")
	d.font("", 10)
	summary := [][2]string{
		{"Giorni chiusi", itoa(rep.DaysClosed)},
		{"Vendite contanti", euro(rep.TotalCashSales)},
		{"Vendite carta", euro(rep.TotalCardSales)},
		{"Altre entrate", euro(rep.TotalOtherIncome)},
		{"Uscite", euro(rep.TotalExpenses)},
		{"Totale entrate", euro(rep.TotalIncome)},
		{"Differenze totali", euro(rep.TotalDiscrepancy)},
		{"Media giornaliera", euro(rep.DailyAverage)},
	}
	for _, s := range summary {
		d.cell(60, s[0], "L")
		d.cell(40, s[1], "R")
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(4)

	d.font("B", 11)
	d.line("Dettaglio Giornaliero")
	widths := []float64{22, 22, 22, 20, 20, 24, 24, 26}
	d.header([]string{"Data", "Contanti", "Carta", "Altre", "Uscite", "Teorico", "Reale", "Diff."}, widths)
	for _, day := range rep.Days {
		date := ItalianDate(day.Date)
		if !day.Closed {
			date += " *"
		}
		d.row([]string{
			date,
			euro(day.CashSales),
			euro(day.CardSales),
			euro(day.OtherIncome),
			euro(day.Expenses),
			euro(day.TheoreticalFloat),
			optionalEuro(day.ActualFloat),
			optionalEuro(day.Discrepancy),
		}, widths)
		if day.Note != "" {
			d.font("I", 8)
			d.pdf.MultiCell(0, 4, d.tr("Note: "+day.Note), "", "L", false)
			d.font("", 9)
		}
	}
	d.font("I", 8)
	d.pdf.Ln(2)
	d.line("* giornata non chiusa, esclusa dai totali")
	return d.output(w)
}
