package core

import (
	"fmt"
	"strings"
)

// SummaryText renders a report as the plain-text summary used for exports
// and sharing. It is a pure presentational transform and carries no
// business logic.
func SummaryText(r Report) string {
	dateStr := "Unknown date"
	if !r.Date.IsZero() {
		dateStr = r.Date.Format("January 2, 2006")
	}

	var b strings.Builder
	b.WriteString("WATER 7 REPORT\n")
	b.WriteString(dateStr + "\n")
	b.WriteString("========================\n\n")

	b.WriteString("INCOME:\n")
	fmt.Fprintf(&b, "Water Sales: ₱%s\n", FormatAmount(r.WaterSales))
	fmt.Fprintf(&b, "Soap Sales: ₱%s\n", FormatAmount(r.SoapSales))
	fmt.Fprintf(&b, "Total Income: ₱%s\n\n", FormatCurrency(r.TotalIncome))

	b.WriteString("EXPENSES:\n")
	for _, e := range r.Expenses {
		if e.Description == "" && e.Amount == "" {
			continue
		}
		desc := e.Description
		if desc == "" {
			desc = "Unnamed"
		}
		fmt.Fprintf(&b, "%s: ₱%s\n", desc, FormatAmount(e.Amount))
	}
	fmt.Fprintf(&b, "Total Expenses: ₱%s\n\n", FormatCurrency(r.TotalExpenses))

	b.WriteString("SUMMARY:\n")
	fmt.Fprintf(&b, "Total Income: ₱%s\n", FormatCurrency(r.TotalIncome))
	fmt.Fprintf(&b, "Total Expenses: ₱%s\n", FormatCurrency(r.TotalExpenses))
	fmt.Fprintf(&b, "Net Income: ₱%s\n", FormatCurrency(r.NetIncome))

	return b.String()
}
