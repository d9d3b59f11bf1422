package core

import (
	"errors"
	"time"
)

// Expense is a single expense line inside a report. IDs are generated by the
// client (or filled in by the repository when absent) and amounts stay as the
// raw text the user typed; totals are derived from them at write time.
type Expense struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// Report is one dated record of sales income, expenses and derived totals.
// TotalIncome, TotalExpenses and NetIncome are recomputed by the repository
// whenever any of their inputs change; the stored values are only a cache of
// the last computation.
type Report struct {
	ID            string    `json:"id,omitempty"`
	Date          time.Time `json:"date"`
	WaterSales    string    `json:"waterSales"`
	SoapSales     string    `json:"soapSales"`
	Expenses      []Expense `json:"expenses"`
	TotalIncome   float64   `json:"totalIncome"`
	TotalExpenses float64   `json:"totalExpenses"`
	NetIncome     float64   `json:"netIncome"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// Draft is the caller-supplied input for creating a report. ID, CreatedAt and
// the derived totals are assigned by the repository.
type Draft struct {
	Date       time.Time `json:"date"`
	WaterSales string    `json:"waterSales"`
	SoapSales  string    `json:"soapSales"`
	Expenses   []Expense `json:"expenses"`
}

// Patch is a partial report update. Nil fields are left untouched; present
// fields take precedence over the stored values during the update merge.
type Patch struct {
	Date       *time.Time `json:"date,omitempty"`
	WaterSales *string    `json:"waterSales,omitempty"`
	SoapSales  *string    `json:"soapSales,omitempty"`
	Expenses   *[]Expense `json:"expenses,omitempty"`
}

// TouchesTotals reports whether applying the patch requires recomputing the
// derived totals.
func (p Patch) TouchesTotals() bool {
	return p.WaterSales != nil || p.SoapSales != nil || p.Expenses != nil
}

var (
	ErrZeroDate   = errors.New("report date is required")
	ErrNoExpenses = errors.New("at least one expense row is required")
)

// Validate checks the invariants the entry form enforces: a business date and
// at least one expense row. Amount fields are not validated here since the
// calculations treat malformed amounts as zero.
func (d Draft) Validate() error {
	if d.Date.IsZero() {
		return ErrZeroDate
	}
	if len(d.Expenses) == 0 {
		return ErrNoExpenses
	}
	return nil
}
