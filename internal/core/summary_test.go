package core

import (
	"strings"
	"testing"
	"time"
)

func TestSummaryText(t *testing.T) {
	r := Report{
		ID:         "r1",
		Date:       time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
		WaterSales: "100.50",
		SoapSales:  "50.25",
		Expenses: []Expense{
			{ID: "e1", Description: "Electricity", Amount: "30"},
			{ID: "e2", Description: "", Amount: "5"},
			{ID: "e3", Description: "", Amount: ""},
		},
		TotalIncome:   150.75,
		TotalExpenses: 35,
		NetIncome:     115.75,
	}

	text := SummaryText(r)

	for _, want := range []string{
		"WATER 7 REPORT",
		"March 7, 2025",
		"Water Sales: ₱100.50",
		"Soap Sales: ₱50.25",
		"Total Income: ₱150.75",
		"Electricity: ₱30.00",
		"Unnamed: ₱5.00",
		"Total Expenses: ₱35.00",
		"Net Income: ₱115.75",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	// The fully empty expense row is skipped.
	if strings.Contains(text, "Unnamed: ₱0.00") {
		t.Errorf("empty expense row should be skipped:\n%s", text)
	}
}

func TestSummaryTextUnknownDate(t *testing.T) {
	text := SummaryText(Report{})
	if !strings.Contains(text, "Unknown date") {
		t.Fatalf("expected fallback date label, got:\n%s", text)
	}
}
