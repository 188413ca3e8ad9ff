package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSetGetDelete(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "jsoj.db"))
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Set(ctx, "a", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, "a", "two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := st.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != "two" {
		t.Fatalf("expected overwritten value, got %q", value)
	}
	if err := st.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "a"); ok {
		t.Fatalf("expected key to be deleted")
	}
	if err := st.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete missing key: %v", err)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jsoj.db")
	ctx := context.Background()

	first, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := first.Set(ctx, "js-oj:lastProblemId", "42"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := openTestStore(t, path)
	value, ok, err := second.Get(ctx, "js-oj:lastProblemId")
	if err != nil || !ok || value != "42" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestListOrdersByKey(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "jsoj.db"))
	ctx := context.Background()
	for _, key := range []string{"b", "c", "a"} {
		if err := st.Set(ctx, key, key+key); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	entries, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Key != "a" || entries[2].Key != "c" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[1].Size != 2 {
		t.Fatalf("expected size 2, got %d", entries[1].Size)
	}
	if entries[0].UpdatedAt.IsZero() {
		t.Fatalf("expected updated_at to be parsed")
	}
}
