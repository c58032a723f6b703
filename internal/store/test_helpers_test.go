package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestStore opens a fresh SQLite store with one merchant "m1".
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	s.WithClock(func() time.Time { return fixedNow })

	if err := s.EnsureMerchant(context.Background(), "m1", "Acme"); err != nil {
		t.Fatalf("EnsureMerchant() failed: %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }
func i64Ptr(n int64) *int64   { return &n }
func boolPtr(b bool) *bool    { return &b }
