package persistence

import (
	"context"
	"time"
)

// JournalFilter narrows journal queries.
type JournalFilter struct {
	Kind  JournalKind
	Since *time.Time
	Limit int
}

// JournalRepository appends and reads audit records.
type JournalRepository interface {
	AppendEntries(ctx context.Context, entries ...JournalEntry) error
	ListEntries(ctx context.Context, filter JournalFilter) ([]JournalEntry, error)
}
