package persistence

import "time"

// JournalKind classifies audit records.
type JournalKind string

const (
	// JournalCommand records a dispatched chat command.
	JournalCommand JournalKind = "command"
	// JournalMeeting records a meeting lifecycle action.
	JournalMeeting JournalKind = "meeting"
)

// JournalEntry is one append-only audit record.
type JournalEntry struct {
	ID         string
	RecordedAt time.Time
	Kind       JournalKind
	// Subject is the command verb or the lifecycle action (start, warn, extend, end).
	Subject   string
	ActorID   int
	ActorName string
	Outcome   string
	Detail    map[string]any
}

// Validate reports whether the entry can be stored.
func (e JournalEntry) Validate() error {
	if e.ID == "" || e.Kind == "" || e.Subject == "" {
		return ErrInvalidEntry
	}
	return nil
}
