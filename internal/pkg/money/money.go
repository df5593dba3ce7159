// Package money formats subscription amounts for reminder messages.
package money

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Total is a per-currency sum.
type Total struct {
	Currency string
	Amount   float64
}

// Format renders amount in the given currency using the locale's number conventions.
// Unknown currency codes fall back to "12.34 XYZ".
func Format(tag language.Tag, amount float64, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}

// Sum adds amounts per currency, keeping currencies in first-seen order.
func Sum(amounts []float64, codes []string) []Total {
	var totals []Total
	idx := make(map[string]int)
	for i, a := range amounts {
		code := strings.ToUpper(strings.TrimSpace(codes[i]))
		j, ok := idx[code]
		if !ok {
			j = len(totals)
			idx[code] = j
			totals = append(totals, Total{Currency: code})
		}
		totals[j].Amount += a
	}
	for i := range totals {
		totals[i].Amount = math.Round(totals[i].Amount*100) / 100
	}
	return totals
}

// FormatTotals renders totals joined with " + ", so a mixed-currency day never shows one misleading sum.
func FormatTotals(tag language.Tag, totals []Total) string {
	parts := make([]string, 0, len(totals))
	for _, t := range totals {
		parts = append(parts, Format(tag, t.Amount, t.Currency))
	}
	return strings.Join(parts, " + ")
}
