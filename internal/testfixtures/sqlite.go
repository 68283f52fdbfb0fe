package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/meeting-conductor/internal/persistence/sqlite"
)

// SQLiteHarness provides a migrated journal backed by a temporary SQLite
// file for integration-style persistence tests.
type SQLiteHarness struct {
	Pool    *sqlite.ConnectionPool
	Journal *sqlite.JournalRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a database in a temporary directory.
// Callers may invoke Close; the helper also registers it with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "journal.db")
	pool, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open journal: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:    pool,
		Journal: sqlite.NewJournalRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
