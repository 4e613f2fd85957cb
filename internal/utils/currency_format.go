package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEuro renders an amount the Italian way, e.g. 1234.5 -> "€ 1.234,50".
func FormatEuro(amount decimal.Decimal) string {
	return "€ " + FormatAmount(amount)
}

// FormatAmount renders an amount with two decimals, "." thousands and "," decimal separators.
func FormatAmount(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a rate such as 22 as "22%" and 5.5 as "5,5%".
func FormatPercent(rate decimal.Decimal) string {
	return strings.Replace(rate.String(), ".", ",", 1) + "%"
}
