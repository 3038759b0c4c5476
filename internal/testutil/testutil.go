// Package testutil provides shared test helpers for setting up backing
// stores and note stores.
package testutil

import (
	"testing"

	"github.com/starford/ansuz/internal/kv"
	"github.com/starford/ansuz/internal/notestore"
)

// TestKV creates a temporary file-backed key-value provider that is
// automatically cleaned up.
func TestKV(t *testing.T) kv.Provider {
	t.Helper()
	provider, err := kv.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return provider
}

// TestStore creates a note store on top of a temporary file backend.
func TestStore(t *testing.T) *notestore.Store {
	t.Helper()
	return notestore.New(TestKV(t))
}
