package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteCreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	id, err := store.Create(ctx, "reports", map[string]any{
		"waterSales": "100.50",
		"createdAt":  int64(1000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	doc, err := store.Get(ctx, "reports", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc["waterSales"] != "100.50" {
		t.Fatalf("unexpected doc: %v", doc)
	}

	if err := store.Update(ctx, "reports", id, map[string]any{"soapSales": "50"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	doc, _ = store.Get(ctx, "reports", id)
	if doc["soapSales"] != "50" || doc["waterSales"] != "100.50" {
		t.Fatalf("update did not merge fields: %v", doc)
	}

	if err := store.Delete(ctx, "reports", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "reports", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteQueryRangeAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	// Three documents with distinct dates and creation times.
	for i, date := range []int64{100, 200, 300} {
		_, err := store.Create(ctx, "reports", map[string]any{
			"date":      date,
			"createdAt": int64(i + 1),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	records, err := store.Query(ctx, "reports", Query{
		Range:      &Range{Field: "date", Min: int64(150), Max: int64(300)},
		OrderBy:    "createdAt",
		Descending: true,
	})
	if err != nil {
		t.Fatalf("range query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records in range, got %d", len(records))
	}
	first := records[0].Data["date"].(float64)
	second := records[1].Data["date"].(float64)
	if first != 300 || second != 200 {
		t.Fatalf("unexpected order: %v, %v", first, second)
	}

	// Inclusive bounds.
	records, err = store.Query(ctx, "reports", Query{
		Range: &Range{Field: "date", Min: int64(100), Max: int64(100)},
	})
	if err != nil {
		t.Fatalf("inclusive query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected inclusive match, got %d records", len(records))
	}
}

func TestSQLiteQueryRejectsBadFieldNames(t *testing.T) {
	store := newTestSQLite(t)
	_, err := store.Query(context.Background(), "reports", Query{
		Range: &Range{Field: "date'; DROP TABLE documents; --", Min: 0, Max: 1},
	})
	if !errors.Is(err, ErrUnsupportedQuery) {
		t.Fatalf("expected ErrUnsupportedQuery, got %v", err)
	}
}

func TestSQLiteCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	if _, err := store.Create(ctx, "reports", map[string]any{"a": 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, "passcode", map[string]any{"passcode": "1234"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	records, err := store.Query(ctx, "passcode", Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].Data["passcode"] != "1234" {
		t.Fatalf("unexpected passcode records: %v", records)
	}
}
