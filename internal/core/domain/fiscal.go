package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Digit positions accept the omocodia letters LMNPQRSTUV.
	taxCodePattern       = regexp.MustCompile(`^[A-Z]{6}[0-9LMNPQRSTUV]{2}[A-Z][0-9LMNPQRSTUV]{2}[A-Z][0-9LMNPQRSTUV]{3}[A-Z]$`)
	recipientCodePattern = regexp.MustCompile(`^[A-Z0-9]{7}$`)
	nonDigits            = regexp.MustCompile(`\D`)
)

// ValidVATNumber checks an Italian partita IVA (11 digits, last one a check digit).
func ValidVATNumber(vatNumber string) bool {
	if len(vatNumber) != 11 {
		return false
	}
	cleaned := nonDigits.ReplaceAllString(vatNumber, "")
	if len(cleaned) != 11 {
		return false
	}

	sum := 0
	for i := 0; i < 10; i++ {
		digit := int(cleaned[i] - '0')
		if i%2 == 1 {
			digit *= 2
			if digit > 9 {
				digit = digit/10 + digit%10
			}
		}
		sum += digit
	}
	check := (10 - sum%10) % 10
	return check == int(cleaned[10]-'0')
}

// NormalizeTaxCode strips spaces and upper-cases a codice fiscale.
func NormalizeTaxCode(taxCode string) string {
	return strings.ToUpper(strings.Join(strings.Fields(taxCode), ""))
}

// ValidTaxCode checks the shape and the check character of a personal codice fiscale.
func ValidTaxCode(taxCode string) bool {
	cleaned := NormalizeTaxCode(taxCode)
	if !taxCodePattern.MatchString(cleaned) {
		return false
	}
	return taxCodeCheckChar(cleaned[:15]) == cleaned[15]
}

// oddPositionValues maps 0-9 then A-Z at odd (1-based) positions of a codice fiscale.
var oddPositionValues = [36]int{
	1, 0, 5, 7, 9, 13, 15, 17, 19, 21,
	1, 0, 5, 7, 9, 13, 15, 17, 19, 21, 2, 4, 18, 20, 11, 3, 6, 8, 12, 14, 16, 10, 22, 25, 24, 23,
}

// taxCodeCheckChar computes the control letter of the first 15 characters.
func taxCodeCheckChar(body string) byte {
	sum := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		idx := int(c - '0')
		if c >= 'A' {
			idx = int(c-'A') + 10
		}
		if i%2 == 0 {
			sum += oddPositionValues[idx]
		} else if c >= 'A' {
			sum += int(c - 'A')
		} else {
			sum += int(c - '0')
		}
	}
	return byte('A' + sum%26)
}

// ValidRecipientCode checks a 7 character SDI codice destinatario ("0000000" when a PEC is used).
func ValidRecipientCode(code string) bool {
	return recipientCodePattern.MatchString(NormalizeTaxCode(code))
}

// VATCode is a VAT rate or exemption nature usable on invoice lines.
type VATCode struct {
	Code        string          `json:"code"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"description"`
}

// CodeDescription is a generic code/label pair.
type CodeDescription struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

var VATCodes = []VATCode{
	{Code: "22V", Rate: decimal.NewFromInt(22), Description: "Iva 22% - Ordinaria"},
	{Code: "10V", Rate: decimal.NewFromInt(10), Description: "Iva 10% - Ridotta alimentari"},
	{Code: "4V", Rate: decimal.NewFromInt(4), Description: "Iva 4% - Super ridotta"},
	{Code: "N1", Rate: decimal.Zero, Description: "Escluso ex art. 15"},
	{Code: "N2.1", Rate: decimal.Zero, Description: "Non soggetto"},
	{Code: "N3.1", Rate: decimal.Zero, Description: "Non imponibile - esportazioni"},
	{Code: "N6.9", Rate: decimal.Zero, Description: "Reverse charge"},
}

var FiscalRegimes = []CodeDescription{
	{Code: "RF01", Description: "Ordinario"},
	{Code: "RF02", Description: "Contribuenti minimi"},
	{Code: "RF04", Description: "Agricoltura e attività connesse"},
	{Code: "RF05", Description: "Vendita sali e tabacchi"},
	{Code: "RF19", Description: "Forfettario"},
}

var DocumentTypes = []CodeDescription{
	{Code: "TD01", Description: "Fattura"},
	{Code: "TD02", Description: "Acconto/Anticipo su fattura"},
	{Code: "TD03", Description: "Acconto/Anticipo su parcella"},
	{Code: "TD04", Description: "Nota di credito"},
	{Code: "TD05", Description: "Nota di debito"},
	{Code: "TD06", Description: "Parcella"},
}

var PaymentMethods = []string{
	"Contanti",
	"Bonifico bancario",
	"Carta di credito/debito",
	"Assegno",
	"PayPal",
	"Altro",
}

const (
	DefaultDocumentType = "TD01"
	DefaultFiscalRegime = "RF01"
)

// LookupVATCode finds a VAT code by its identifier.
func LookupVATCode(code string) (VATCode, bool) {
	for _, c := range VATCodes {
		if c.Code == code {
			return c, true
		}
	}
	return VATCode{}, false
}

func hasCode(list []CodeDescription, code string) bool {
	for _, c := range list {
		if c.Code == code {
			return true
		}
	}
	return false
}

// ValidDocumentType reports whether code is a supported TDxx document type.
func ValidDocumentType(code string) bool { return hasCode(DocumentTypes, code) }

// ValidFiscalRegime reports whether code is a supported RFxx regime.
func ValidFiscalRegime(code string) bool { return hasCode(FiscalRegimes, code) }
