// Package passcode implements the shared-passcode gate in front of
// report mutations.
package passcode

import (
	"context"
	"log/slog"

	"water7/internal/docstore"
)

// Collection is the document collection holding the shared passcode.
const Collection = "passcode"

// Verifier answers whether a submitted passcode grants access.
type Verifier interface {
	Verify(ctx context.Context, candidate string) bool
}

// StoreVerifier checks candidates against the first document of the
// passcode collection. Any failure to load or read the stored value is
// treated as a rejection, never as an error the caller must handle.
type StoreVerifier struct {
	store docstore.Store
}

// NewStoreVerifier creates a verifier backed by the given document store.
func NewStoreVerifier(store docstore.Store) *StoreVerifier {
	return &StoreVerifier{store: store}
}

// Verify reports whether candidate matches the stored passcode exactly.
// Missing documents, read failures and an empty stored value all fail closed.
func (v *StoreVerifier) Verify(ctx context.Context, candidate string) bool {
	records, err := v.store.Query(ctx, Collection, docstore.Query{Limit: 1})
	if err != nil {
		slog.WarnContext(ctx, "Passcode lookup failed, rejecting", "error", err)
		return false
	}
	if len(records) == 0 {
		slog.WarnContext(ctx, "No passcode configured, rejecting")
		return false
	}

	stored, ok := records[0].Data["passcode"].(string)
	if !ok || stored == "" {
		slog.WarnContext(ctx, "Stored passcode is empty or malformed, rejecting")
		return false
	}

	return candidate == stored
}

// Static is a fixed-value verifier for tests and local development.
type Static string

// Verify reports whether candidate equals the static value. An empty
// static value rejects everything.
func (s Static) Verify(_ context.Context, candidate string) bool {
	return s != "" && candidate == string(s)
}
