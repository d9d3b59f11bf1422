package docstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryCreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	id, err := store.Create(ctx, "reports", map[string]any{"waterSales": "100", "createdAt": int64(10)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("create returned empty id")
	}

	doc, err := store.Get(ctx, "reports", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc["waterSales"] != "100" {
		t.Fatalf("unexpected doc: %v", doc)
	}

	if err := store.Update(ctx, "reports", id, map[string]any{"waterSales": "200"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	doc, _ = store.Get(ctx, "reports", id)
	if doc["waterSales"] != "200" || doc["createdAt"] != int64(10) {
		t.Fatalf("update did not merge fields: %v", doc)
	}

	if err := store.Delete(ctx, "reports", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "reports", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryUpdateMissing(t *testing.T) {
	store := NewMemory()
	err := store.Update(context.Background(), "reports", "nope", map[string]any{"a": 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryQueryOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	for _, ts := range []int64{30, 10, 20} {
		if _, err := store.Create(ctx, "reports", map[string]any{"createdAt": ts}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	records, err := store.Query(ctx, "reports", Query{OrderBy: "createdAt", Descending: true})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	var prev float64 = 1 << 62
	for _, rec := range records {
		cur := numericValue(rec.Data["createdAt"])
		if cur > prev {
			t.Fatalf("records not in descending createdAt order")
		}
		prev = cur
	}
}

func TestMemoryQueryRangeUnsupported(t *testing.T) {
	store := NewMemory()
	_, err := store.Query(context.Background(), "reports", Query{
		Range: &Range{Field: "date", Min: int64(0), Max: int64(100)},
	})
	if !errors.Is(err, ErrUnsupportedQuery) {
		t.Fatalf("expected ErrUnsupportedQuery, got %v", err)
	}
}

func TestMemoryFailNextWith(t *testing.T) {
	store := NewMemory()
	store.FailNextWith = ErrPermissionDenied

	_, err := store.Create(context.Background(), "reports", map[string]any{})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	// The failure is consumed; the next operation succeeds.
	id, err := store.Create(context.Background(), "reports", map[string]any{})
	if err != nil {
		t.Fatalf("second create should succeed, got %v", err)
	}

	// Reads consume the failure too.
	store.FailNextWith = ErrPermissionDenied
	if _, err := store.Get(context.Background(), "reports", id); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("get should fail with ErrPermissionDenied, got %v", err)
	}
	if _, err := store.Get(context.Background(), "reports", id); err != nil {
		t.Fatalf("second get should succeed, got %v", err)
	}
}
