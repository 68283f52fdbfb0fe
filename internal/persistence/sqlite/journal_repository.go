package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/meeting-conductor/internal/persistence"
)

// recorded_at is stored as fixed-width UTC text so it sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// JournalRepository stores audit records in the journal table.
type JournalRepository struct {
	pool  *ConnectionPool
	retry RetryConfig
}

var _ persistence.JournalRepository = (*JournalRepository)(nil)

// NewJournalRepository builds a repository on an opened pool.
func NewJournalRepository(pool *ConnectionPool) *JournalRepository {
	return &JournalRepository{pool: pool, retry: DefaultRetryConfig()}
}

// AppendEntries inserts entries in one transaction.
func (r *JournalRepository) AppendEntries(ctx context.Context, entries ...persistence.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	type row struct {
		entry  persistence.JournalEntry
		detail []byte
	}
	rows := make([]row, 0, len(entries))
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("journal entry %q: %w", entry.ID, err)
		}
		detail, err := encodeDetail(entry.Detail)
		if err != nil {
			return fmt.Errorf("encode detail for %s: %w", entry.ID, err)
		}
		rows = append(rows, row{entry: entry, detail: detail})
	}

	return WithRetry(ctx, r.retry, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT INTO journal (id, recorded_at, kind, subject, actor_id, actor_name, outcome, detail)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, rw := range rows {
				e := rw.entry
				if _, err := stmt.ExecContext(ctx,
					e.ID, e.RecordedAt.UTC().Format(timeLayout), string(e.Kind), e.Subject,
					e.ActorID, e.ActorName, e.Outcome, rw.detail,
				); err != nil {
					return fmt.Errorf("insert journal entry %s: %w", e.ID, err)
				}
			}
			return nil
		})
	})
}

// ListEntries returns entries in recording order.
func (r *JournalRepository) ListEntries(ctx context.Context, filter persistence.JournalFilter) ([]persistence.JournalEntry, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Since != nil {
		clauses = append(clauses, "recorded_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	query := `SELECT id, recorded_at, kind, subject, actor_id, actor_name, outcome, detail FROM journal`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY recorded_at, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var out []persistence.JournalEntry
	for rows.Next() {
		var (
			entry      persistence.JournalEntry
			recordedAt string
			kind       string
			detail     []byte
		)
		if err := rows.Scan(&entry.ID, &recordedAt, &kind, &entry.Subject, &entry.ActorID, &entry.ActorName, &entry.Outcome, &detail); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.Kind = persistence.JournalKind(kind)
		if entry.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at for %s: %w", entry.ID, err)
		}
		if entry.Detail, err = decodeDetail(detail); err != nil {
			return nil, fmt.Errorf("decode detail for %s: %w", entry.ID, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
