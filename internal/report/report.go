// Package report renders printable documents: invoice PDFs and the monthly
// cash report as PDF or XLSX.
package report

import (
	"fmt"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

// Issuer is the shop block printed at the top of every document.
type Issuer struct {
	Name      string
	Address   string
	VATNumber string
	TaxCode   string
}

var monthNames = [...]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// MonthName returns the Italian name of month (1-12).
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("Mese %d", month)
	}
	return monthNames[month-1]
}

// ItalianDate turns a YYYY-MM-DD business date into DD/MM/YYYY. Unparseable input is returned as is.
func ItalianDate(date string) string {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

// MonthlyFilename is the download name of a monthly report.
func MonthlyFilename(year, month int, ext string) string {
	return fmt.Sprintf("resoconto-%d-%02d.%s", year, month, ext)
}

// InvoiceFilename is the download name of an invoice PDF.
func InvoiceFilename(inv domain.Invoice) string {
	return fmt.Sprintf("fattura-%d-%d.pdf", inv.Year, inv.Number)
}
