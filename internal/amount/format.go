// internal/amount/format.go
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUSD renders a USD price with fixed-decimal notation, never scientific.
// Very small prices keep more precision so sub-cent tokens stay readable.
func FormatUSD(price float64) string {
	d := decimal.NewFromFloat(price)
	switch {
	case price < 0.0001:
		return d.Truncate(8).StringFixed(8)
	case price < 0.01:
		return d.Truncate(6).StringFixed(6)
	default:
		return groupThousands(d.Truncate(4).String())
	}
}

// FormatReference renders a reference-asset (SOL) denominated price. Same
// fixed-decimal policy as FormatUSD with looser thresholds.
func FormatReference(price float64) string {
	d := decimal.NewFromFloat(price)
	if price < 0.01 {
		return d.Truncate(8).StringFixed(8)
	}
	return groupThousands(d.Truncate(4).String())
}

// groupThousands inserts comma separators into the integer part of a
// plain decimal string.
func groupThousands(s string) string {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
