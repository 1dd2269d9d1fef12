package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvent creates a variable event with minimal required fields.
func createTestEvent(id string, intent Intent, scopeKey int64) VariableEvent {
	return VariableEvent{
		ID:           id,
		Intent:       intent,
		Key:          100,
		WorkflowKey:  7,
		Name:         []byte("x"),
		Value:        []byte{0xa1, 'A'},
		ScopeKey:     scopeKey,
		RootScopeKey: 1,
	}
}
