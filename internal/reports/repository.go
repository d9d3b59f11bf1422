// Package reports implements CRUD over the "reports" collection with
// recompute-on-write semantics and the two-path month filter.
package reports

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"water7/internal/core"
	"water7/internal/docstore"
)

// Collection is the document collection reports live in.
const Collection = "reports"

// MonthFilter restricts a listing to a single calendar month.
type MonthFilter struct {
	Year  int
	Month time.Month
}

// Bounds returns the inclusive [first instant, last instant] of the month.
func (f MonthFilter) Bounds() (time.Time, time.Time) {
	first := time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return first, last
}

// Contains reports whether t falls in the filter's calendar month.
func (f MonthFilter) Contains(t time.Time) bool {
	t = t.UTC()
	return t.Year() == f.Year && t.Month() == f.Month
}

// Repository owns report persistence and the in-memory report list that
// readers observe. The cached list is mutated only by Create, Update, Delete
// and List; presentation code never touches it directly.
type Repository struct {
	store docstore.Store

	mu    sync.RWMutex
	cache []core.Report

	// clock is swappable in tests.
	clock func() time.Time
}

// NewRepository creates a repository over the given document store.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{
		store: store,
		clock: time.Now,
	}
}

// Create computes the derived totals, assigns the creation timestamp, and
// persists the report. The returned report carries the storage-assigned id.
func (r *Repository) Create(ctx context.Context, draft core.Draft) (core.Report, error) {
	if err := draft.Validate(); err != nil {
		return core.Report{}, err
	}

	expenses := ensureExpenseIDs(draft.Expenses)
	totalIncome := core.TotalIncome(draft.WaterSales, draft.SoapSales)
	totalExpenses := core.TotalExpenses(expenses)
	netIncome := core.NetIncome(totalIncome, totalExpenses)
	createdAt := r.clock().UTC()

	doc := map[string]any{
		"date":          docstore.EncodeTimestamp(draft.Date),
		"waterSales":    draft.WaterSales,
		"soapSales":     draft.SoapSales,
		"expenses":      encodeExpenses(expenses),
		"totalIncome":   totalIncome,
		"totalExpenses": totalExpenses,
		"netIncome":     netIncome,
		"createdAt":     docstore.EncodeTimestamp(createdAt),
	}

	id, err := r.store.Create(ctx, Collection, doc)
	if err != nil {
		return core.Report{}, wrapStoreErr("create", "", err)
	}

	report := core.Report{
		ID:            id,
		Date:          draft.Date.UTC(),
		WaterSales:    draft.WaterSales,
		SoapSales:     draft.SoapSales,
		Expenses:      expenses,
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		NetIncome:     netIncome,
		CreatedAt:     createdAt,
	}

	r.mu.Lock()
	r.cache = append([]core.Report{report}, r.cache...)
	r.mu.Unlock()

	slog.InfoContext(ctx, "Report created",
		"id", id,
		"date", report.Date.Format("2006-01-02"),
		"total_income", totalIncome,
		"net_income", netIncome)

	return report, nil
}

// Update merges the patch over the current stored state, recomputes the
// derived totals when any of their inputs is present, and persists only the
// changed fields. ID and CreatedAt are never altered.
func (r *Repository) Update(ctx context.Context, id string, patch core.Patch) (core.Report, error) {
	current, err := r.current(ctx, id)
	if err != nil {
		return core.Report{}, err
	}

	merged := current
	fields := map[string]any{}

	if patch.Date != nil {
		merged.Date = patch.Date.UTC()
		fields["date"] = docstore.EncodeTimestamp(merged.Date)
	}
	if patch.WaterSales != nil {
		merged.WaterSales = *patch.WaterSales
		fields["waterSales"] = merged.WaterSales
	}
	if patch.SoapSales != nil {
		merged.SoapSales = *patch.SoapSales
		fields["soapSales"] = merged.SoapSales
	}
	if patch.Expenses != nil {
		merged.Expenses = ensureExpenseIDs(*patch.Expenses)
		fields["expenses"] = encodeExpenses(merged.Expenses)
	}

	if patch.TouchesTotals() {
		merged.TotalIncome = core.TotalIncome(merged.WaterSales, merged.SoapSales)
		merged.TotalExpenses = core.TotalExpenses(merged.Expenses)
		merged.NetIncome = core.NetIncome(merged.TotalIncome, merged.TotalExpenses)
		fields["totalIncome"] = merged.TotalIncome
		fields["totalExpenses"] = merged.TotalExpenses
		fields["netIncome"] = merged.NetIncome
	}

	if len(fields) == 0 {
		return current, nil
	}

	if err := r.store.Update(ctx, Collection, id, fields); err != nil {
		return core.Report{}, wrapStoreErr("update", id, err)
	}

	r.mu.Lock()
	for i := range r.cache {
		if r.cache[i].ID == id {
			r.cache[i] = merged
			break
		}
	}
	r.mu.Unlock()

	slog.InfoContext(ctx, "Report updated",
		"id", id,
		"fields", len(fields),
		"recomputed", patch.TouchesTotals())

	return merged, nil
}

// Delete removes the report permanently.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return wrapStoreErr("delete", id, err)
	}

	r.mu.Lock()
	for i := range r.cache {
		if r.cache[i].ID == id {
			r.cache = append(r.cache[:i], r.cache[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	slog.InfoContext(ctx, "Report deleted", "id", id)
	return nil
}

// Get returns a single report by id.
func (r *Repository) Get(ctx context.Context, id string) (core.Report, error) {
	return r.current(ctx, id)
}

// List fetches reports, newest first. With a filter it first attempts a
// server-side date-range query; if the store cannot service that shape it
// falls back to the full fetch and filters client-side. The fetched list
// replaces the in-memory cache.
func (r *Repository) List(ctx context.Context, filter *MonthFilter) ([]core.Report, error) {
	if filter != nil {
		first, last := filter.Bounds()
		records, err := r.store.Query(ctx, Collection, docstore.Query{
			Range: &docstore.Range{
				Field: "date",
				Min:   docstore.EncodeTimestamp(first),
				Max:   docstore.EncodeTimestamp(last),
			},
			OrderBy:    "createdAt",
			Descending: true,
		})
		if err == nil {
			result := r.decodeAll(ctx, records)
			r.setCache(result)
			return result, nil
		}
		if errors.Is(err, docstore.ErrPermissionDenied) {
			return nil, wrapStoreErr("list", "", err)
		}
		slog.WarnContext(ctx, "Date range query failed, falling back to client-side filter",
			"error", err,
			"year", filter.Year,
			"month", int(filter.Month))
	}

	records, err := r.store.Query(ctx, Collection, docstore.Query{
		OrderBy:    "createdAt",
		Descending: true,
	})
	if err != nil {
		return nil, wrapStoreErr("list", "", err)
	}

	all := r.decodeAll(ctx, records)
	if filter != nil {
		filtered := all[:0:0]
		for _, report := range all {
			if filter.Contains(report.Date) {
				filtered = append(filtered, report)
			}
		}
		all = filtered
	}

	r.setCache(all)
	return all, nil
}

// Cached returns a snapshot of the in-memory report list.
func (r *Repository) Cached() []core.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Report, len(r.cache))
	copy(out, r.cache)
	return out
}

func (r *Repository) setCache(reports []core.Report) {
	r.mu.Lock()
	r.cache = append([]core.Report(nil), reports...)
	r.mu.Unlock()
}

// current resolves the present state of a report, preferring the cache and
// falling back to the store so update merges always see prior values.
func (r *Repository) current(ctx context.Context, id string) (core.Report, error) {
	r.mu.RLock()
	for _, report := range r.cache {
		if report.ID == id {
			r.mu.RUnlock()
			return report, nil
		}
	}
	r.mu.RUnlock()

	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return core.Report{}, wrapStoreErr("get", id, err)
	}
	return r.decodeRecord(ctx, docstore.Record{ID: id, Data: doc}), nil
}

func (r *Repository) decodeAll(ctx context.Context, records []docstore.Record) []core.Report {
	out := make([]core.Report, 0, len(records))
	for _, rec := range records {
		out = append(out, r.decodeRecord(ctx, rec))
	}
	// Creation-time descending regardless of which path produced the list.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// decodeRecord normalizes a raw stored document. Unparsable dates fail
// closed to the current time with a warning instead of aborting the list.
func (r *Repository) decodeRecord(ctx context.Context, rec docstore.Record) core.Report {
	report := core.Report{
		ID:         rec.ID,
		WaterSales: stringValue(rec.Data["waterSales"]),
		SoapSales:  stringValue(rec.Data["soapSales"]),
		Expenses:   decodeExpenses(rec.Data["expenses"]),
	}

	report.Date = r.decodeDate(ctx, rec.ID, "date", rec.Data["date"])
	report.CreatedAt = r.decodeDate(ctx, rec.ID, "createdAt", rec.Data["createdAt"])
	report.TotalIncome = floatValue(rec.Data["totalIncome"])
	report.TotalExpenses = floatValue(rec.Data["totalExpenses"])
	report.NetIncome = floatValue(rec.Data["netIncome"])
	return report
}

func (r *Repository) decodeDate(ctx context.Context, id, field string, raw any) time.Time {
	t, err := docstore.DecodeTimestamp(raw)
	if err != nil {
		derr := &DateParseError{Value: raw}
		slog.WarnContext(ctx, "Substituting current date for unparsable stored value",
			"report_id", id,
			"field", field,
			"error", derr)
		return r.clock().UTC()
	}
	return t.UTC()
}

func wrapStoreErr(op, id string, err error) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return &NotFoundError{ID: id}
	case errors.Is(err, docstore.ErrPermissionDenied):
		return &PermissionError{Op: op, Err: err}
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}

// ensureExpenseIDs fills in ids for expense rows the client sent without one.
func ensureExpenseIDs(expenses []core.Expense) []core.Expense {
	out := make([]core.Expense, len(expenses))
	copy(out, expenses)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

func encodeExpenses(expenses []core.Expense) []map[string]any {
	out := make([]map[string]any, len(expenses))
	for i, e := range expenses {
		out[i] = map[string]any{
			"id":          e.ID,
			"description": e.Description,
			"amount":      e.Amount,
		}
	}
	return out
}

// decodeExpenses tolerates both the in-memory and the JSON round-tripped
// representation, and an absent or empty list.
func decodeExpenses(raw any) []core.Expense {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []map[string]any:
		for _, m := range v {
			items = append(items, m)
		}
	default:
		return nil
	}

	out := make([]core.Expense, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, core.Expense{
			ID:          stringValue(m["id"]),
			Description: stringValue(m["description"]),
			Amount:      stringValue(m["amount"]),
		})
	}
	return out
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
