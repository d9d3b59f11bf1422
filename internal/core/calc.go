// Package core provides the report domain model and the pure calculation
// functions that derive income totals from raw sales and expense input.
//
// The calculation functions never fail: malformed or empty numeric text
// degrades to 0 instead of returning an error. Totals are plain float64
// values; the two-decimal rounding happens only at display time.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount parses a decimal-as-text amount leniently. Empty or
// non-numeric input yields 0. Thousands separators (commas) are tolerated.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// TotalIncome sums the water and soap sales amounts.
func TotalIncome(waterSales, soapSales string) float64 {
	return ParseAmount(waterSales) + ParseAmount(soapSales)
}

// TotalExpenses sums the expense amounts. An empty list yields 0.
func TotalExpenses(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += ParseAmount(e.Amount)
	}
	return total
}

// NetIncome is total income minus total expenses. The result may be negative.
func NetIncome(totalIncome, totalExpenses float64) float64 {
	return totalIncome - totalExpenses
}

// FormatCurrency renders a value with two fixed decimals and comma thousands
// grouping, e.g. 1234.5 -> "1,234.50".
func FormatCurrency(value float64) string {
	neg := value < 0
	if neg {
		value = -value
	}
	s := strconv.FormatFloat(value, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")
	grouped := groupThousands(intPart)
	out := grouped + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatAmount formats a decimal-as-text amount for display, parsing it with
// the same leniency as the calculations.
func FormatAmount(s string) string {
	return FormatCurrency(ParseAmount(s))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
