package memory

import (
	"context"
	"fmt"
	"sync"

	"water7/internal/core"
)

// Store is an in-memory archive used in tests and local development.
type Store struct {
	mu    sync.Mutex
	items []core.Report
}

func New() *Store {
	return &Store{}
}

// Append stores the report and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r core.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Rows returns a snapshot of everything archived so far.
func (s *Store) Rows() []core.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Report, len(s.items))
	copy(out, s.items)
	return out
}
