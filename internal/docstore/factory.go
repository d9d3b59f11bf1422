package docstore

import (
	"fmt"
	"log/slog"
)

// BackendType selects the document-store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// FactoryConfig holds configuration for store creation.
type FactoryConfig struct {
	Type         BackendType
	SQLiteDBPath string
}

// Open creates a Store based on the provided config.
func Open(cfg FactoryConfig) (Store, error) {
	switch cfg.Type {
	case SQLiteBackend:
		store, err := NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("create sqlite store: %w", err)
		}
		slog.Info("Initialized SQLite document store", "path", cfg.SQLiteDBPath)
		return store, nil
	case MemoryBackend:
		slog.Info("Initialized in-memory document store")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
