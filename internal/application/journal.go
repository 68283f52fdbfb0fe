package application

import (
	"context"

	"github.com/example/meeting-conductor/internal/persistence"
	"github.com/example/meeting-conductor/internal/scheduler"
)

// Journal receives audit entries. Record must not block the event loop.
type Journal interface {
	Record(ctx context.Context, entry persistence.JournalEntry)
}

type discardJournal struct{}

func (discardJournal) Record(context.Context, persistence.JournalEntry) {}

func (c *Conductor) journalCommand(ctx context.Context, cmd command, err error) {
	outcome := "ok"
	if err != nil {
		outcome = ErrorKind(err)
	}
	detail := map[string]any{"mode": string(c.mode)}
	if args := cmd.auditArgs(); len(args) > 0 {
		detail["args"] = args
	}
	c.journal.Record(ctx, persistence.JournalEntry{
		ID:         c.newID(),
		RecordedAt: c.now(),
		Kind:       persistence.JournalCommand,
		Subject:    cmd.verb,
		ActorID:    cmd.sender.ID,
		ActorName:  cmd.sender.Name,
		Outcome:    outcome,
		Detail:     detail,
	})
}

func (c *Conductor) journalMeeting(ctx context.Context, action string, m scheduler.Meeting, actorID int, outcome string) {
	entry := persistence.JournalEntry{
		ID:         c.newID(),
		RecordedAt: c.now(),
		Kind:       persistence.JournalMeeting,
		Subject:    action,
		ActorID:    actorID,
		Outcome:    outcome,
		Detail: map[string]any{
			"meeting":    m.Name,
			"meeting_id": m.MeetingID,
			"hard_end":   m.HardEnd.Format("2006-01-02T15:04:05Z07:00"),
		},
	}
	if p, ok := c.roster.Get(actorID); ok && actorID != 0 {
		entry.ActorName = p.Name
	}
	c.journal.Record(ctx, entry)
}
