package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Store for development and tests. Range queries are
// deliberately unsupported so that callers exercise the same fallback path a
// cloud document database forces when an index is missing.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any

	// FailNextWith, when set, makes the next operation fail with the given
	// error. Used by tests to simulate access-control denials.
	FailNextWith error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]map[string]any)}
}

func (m *Memory) takeFailure() error {
	err := m.FailNextWith
	m.FailNextWith = nil
	return err
}

func (m *Memory) Create(_ context.Context, collection string, doc map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return "", err
	}
	col, ok := m.collections[collection]
	if !ok {
		col = make(map[string]map[string]any)
		m.collections[collection] = col
	}
	id := uuid.NewString()
	col[id] = cloneDoc(doc)
	return id, nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	doc, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) Query(_ context.Context, collection string, q Query) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	if q.Range != nil {
		return nil, ErrUnsupportedQuery
	}

	var out []Record
	for id, doc := range m.collections[collection] {
		out = append(out, Record{ID: id, Data: cloneDoc(doc)})
	}

	if q.OrderBy != "" {
		sort.Slice(out, func(i, j int) bool {
			a := numericValue(out[i].Data[q.OrderBy])
			b := numericValue(out[j].Data[q.OrderBy])
			if q.Descending {
				return a > b
			}
			return a < b
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

func numericValue(v any) float64 {
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

func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
