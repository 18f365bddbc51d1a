package kvstore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLite_SetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "medicines:guest", `[{"id":"m1"}]`); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	v, ok, err := store.Get(ctx, "medicines:guest")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !ok || v != `[{"id":"m1"}]` {
		t.Fatalf("unexpected value: ok=%v v=%q", ok, v)
	}
}

func TestSQLite_MissingKey(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer store.Close()

	_, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for missing key")
	}
}

func TestSQLite_SetOverwrites(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := store.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	v, ok, _ := store.Get(ctx, "k")
	if !ok || v != "v2" {
		t.Fatalf("expected overwrite, got ok=%v v=%q", ok, v)
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	if err := store.Set(ctx, "k", "persisted"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	store, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer store.Close()

	v, ok, _ := store.Get(ctx, "k")
	if !ok || v != "persisted" {
		t.Fatalf("expected value to survive reopen, got ok=%v v=%q", ok, v)
	}
}
