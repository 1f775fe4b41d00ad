package storage

import (
	"context"
	"testing"

	"BacklogStatus/internal/config"
)

func openMemory(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(context.Background(), config.StorageConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStoreGetSet(t *testing.T) {
	t.Parallel()

	store := openMemory(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "token", "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "token", "second"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, ok, err := store.Get(ctx, "token")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != "second" {
		t.Fatalf("value = %q, want second", got)
	}
}

func TestSQLStoreMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openMemory(t)
	if err := store.Set(context.Background(), "webhook", "https://example.org"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if v, ok, _ := store.Get(context.Background(), "webhook"); !ok || v != "https://example.org" {
		t.Fatalf("value lost after migrate: %q %v", v, ok)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), config.StorageConfig{Driver: "mongo", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), config.StorageConfig{Driver: "sqlite"}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
