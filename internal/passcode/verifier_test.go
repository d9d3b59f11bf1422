package passcode

import (
	"context"
	"testing"

	"water7/internal/docstore"
)

func seedPasscode(t *testing.T, store *docstore.Memory, value any) {
	t.Helper()
	if _, err := store.Create(context.Background(), Collection, map[string]any{"passcode": value}); err != nil {
		t.Fatalf("seed passcode: %v", err)
	}
}

func TestStoreVerifier(t *testing.T) {
	ctx := context.Background()

	t.Run("matching passcode is accepted", func(t *testing.T) {
		store := docstore.NewMemory()
		seedPasscode(t, store, "1234")
		if !NewStoreVerifier(store).Verify(ctx, "1234") {
			t.Error("expected match to be accepted")
		}
	})

	t.Run("wrong passcode is rejected", func(t *testing.T) {
		store := docstore.NewMemory()
		seedPasscode(t, store, "1234")
		v := NewStoreVerifier(store)
		for _, candidate := range []string{"", "123", "12345", " 1234"} {
			if v.Verify(ctx, candidate) {
				t.Errorf("candidate %q should be rejected", candidate)
			}
		}
	})

	t.Run("no stored passcode fails closed", func(t *testing.T) {
		store := docstore.NewMemory()
		if NewStoreVerifier(store).Verify(ctx, "anything") {
			t.Error("empty collection should reject")
		}
	})

	t.Run("empty stored value fails closed", func(t *testing.T) {
		store := docstore.NewMemory()
		seedPasscode(t, store, "")
		if NewStoreVerifier(store).Verify(ctx, "") {
			t.Error("empty stored passcode should reject even an empty candidate")
		}
	})

	t.Run("non-string stored value fails closed", func(t *testing.T) {
		store := docstore.NewMemory()
		seedPasscode(t, store, 1234)
		if NewStoreVerifier(store).Verify(ctx, "1234") {
			t.Error("malformed stored passcode should reject")
		}
	})

	t.Run("lookup failure fails closed", func(t *testing.T) {
		store := docstore.NewMemory()
		seedPasscode(t, store, "1234")
		store.FailNextWith = docstore.ErrPermissionDenied
		if NewStoreVerifier(store).Verify(ctx, "1234") {
			t.Error("store failure should reject")
		}
	})
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	if !Static("dev").Verify(ctx, "dev") {
		t.Error("expected static match")
	}
	if Static("dev").Verify(ctx, "prod") {
		t.Error("expected static mismatch to reject")
	}
	if Static("").Verify(ctx, "") {
		t.Error("empty static value must reject everything")
	}
}
