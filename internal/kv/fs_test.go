package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testFS(t *testing.T) *FS {
	t.Helper()
	f, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return f
}

func TestFSRoundTrip(t *testing.T) {
	f := testFS(t)
	ctx := context.Background()

	if err := f.Set(ctx, "notes", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := f.Get(ctx, "notes")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("Get = %s", got)
	}
}

func TestFSGetMissingKey(t *testing.T) {
	f := testFS(t)
	_, err := f.Get(context.Background(), "absent")
	if !errors.Is(err, ErrNoKey) {
		t.Errorf("expected ErrNoKey, got %v", err)
	}
}

func TestFSSetOverwrites(t *testing.T) {
	f := testFS(t)
	ctx := context.Background()
	_ = f.Set(ctx, "theme", []byte(`"light"`))
	_ = f.Set(ctx, "theme", []byte(`"dark"`))
	got, _ := f.Get(ctx, "theme")
	if string(got) != `"dark"` {
		t.Errorf("Get after overwrite = %s", got)
	}
}

func TestFSDeleteIdempotent(t *testing.T) {
	f := testFS(t)
	ctx := context.Background()
	_ = f.Set(ctx, "tags", []byte(`{}`))
	if err := f.Delete(ctx, "tags"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.Delete(ctx, "tags"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if _, err := f.Get(ctx, "tags"); !errors.Is(err, ErrNoKey) {
		t.Errorf("expected ErrNoKey after delete, got %v", err)
	}
}

func TestFSRejectsTraversalKeys(t *testing.T) {
	f := testFS(t)
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "a/b", "/abs"} {
		if err := f.Set(ctx, key, []byte("x")); err == nil {
			t.Errorf("Set(%q) succeeded, want error", key)
		}
	}
}

func TestFSLeavesNoTempFiles(t *testing.T) {
	f := testFS(t)
	_ = f.Set(context.Background(), "notes", []byte("[]"))

	entries, err := os.ReadDir(f.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			t.Errorf("unexpected file in data dir: %s", e.Name())
		}
	}
}
