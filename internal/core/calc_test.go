package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"100.50", 100.50},
		{"0", 0},
		{" 2.5 ", 2.5},
		{"1,234.56", 1234.56},
		{"-30", -30},
		{"", 0},
		{"abc", 0},
		{"12.3.4", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestTotalIncome(t *testing.T) {
	cases := []struct {
		water, soap string
		want        float64
	}{
		{"100.50", "50.25", 150.75},
		{"", "", 0},
		{"abc", "50", 50},
		{"100", "", 100},
		{"-10", "5", -5},
	}
	for _, tc := range cases {
		if got := TotalIncome(tc.water, tc.soap); got != tc.want {
			t.Errorf("TotalIncome(%q, %q) = %v, want %v", tc.water, tc.soap, got, tc.want)
		}
	}
}

func TestTotalExpenses(t *testing.T) {
	if got := TotalExpenses(nil); got != 0 {
		t.Fatalf("TotalExpenses(nil) = %v, want 0", got)
	}
	if got := TotalExpenses([]Expense{}); got != 0 {
		t.Fatalf("TotalExpenses(empty) = %v, want 0", got)
	}

	expenses := []Expense{
		{ID: "1", Description: "Electricity", Amount: "30"},
		{ID: "2", Description: "Filters", Amount: "12.50"},
		{ID: "3", Description: "garbage", Amount: "not-a-number"},
		{ID: "4", Description: "blank", Amount: ""},
	}
	if got := TotalExpenses(expenses); got != 42.50 {
		t.Fatalf("TotalExpenses = %v, want 42.50", got)
	}
}

func TestNetIncome(t *testing.T) {
	cases := []struct {
		income, expenses, want float64
	}{
		{150.75, 30, 120.75},
		{10, 25, -15},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := NetIncome(tc.income, tc.expenses); got != tc.want {
			t.Errorf("NetIncome(%v, %v) = %v, want %v", tc.income, tc.expenses, got, tc.want)
		}
	}
}

func TestNetIncomeMatchesSubtraction(t *testing.T) {
	values := []float64{-1234.56, -1, 0, 0.01, 99.99, 1e6}
	for _, i := range values {
		for _, e := range values {
			if got := NetIncome(i, e); math.Abs(got-(i-e)) > 1e-9 {
				t.Fatalf("NetIncome(%v, %v) = %v, want %v", i, e, got, i-e)
			}
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5, "5.00"},
		{1234.5, "1,234.50"},
		{1234567.891, "1,234,567.89"},
		{-1234.5, "-1,234.50"},
		{999.999, "1,000.00"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount("1234.5"); got != "1,234.50" {
		t.Fatalf("FormatAmount = %q, want %q", got, "1,234.50")
	}
	if got := FormatAmount("junk"); got != "0.00" {
		t.Fatalf("FormatAmount(junk) = %q, want %q", got, "0.00")
	}
}
