package application

import (
	"context"

	"github.com/example/meeting-conductor/internal/chat"
	"github.com/example/meeting-conductor/internal/event"
	"github.com/example/meeting-conductor/internal/roster"
)

func (c *Conductor) handleMessage(ctx context.Context, raw event.Raw) {
	c.apply(ctx, event.Parse(raw), false)
}

// apply routes one event. relayed marks events unwrapped from an envelope
// sent by the primary.
func (c *Conductor) apply(ctx context.Context, ev event.Event, relayed bool) {
	switch e := ev.(type) {
	case event.Pong:
		if !relayed {
			c.onPong(ctx, e)
		}
	case event.Chat:
		if !relayed {
			c.onChat(ctx, e)
		}
	case event.Unknown:
		c.logger.DebugContext(ctx, "ignoring unrecognised message", "address", e.Raw.Address)
	default:
		c.onRoster(ctx, ev, relayed)
	}
}

func (c *Conductor) onChat(ctx context.Context, e event.Chat) {
	if !e.HasID() {
		c.logger.DebugContext(ctx, "ignoring chat without sender id", "name", e.Name)
		return
	}
	for _, line := range chat.Lines(e.Text) {
		c.dispatch(ctx, e.Header, line)
	}
}

func (c *Conductor) onPong(ctx context.Context, p event.Pong) {
	if !c.ponged {
		c.logger.InfoContext(ctx, "control plane answered",
			"version", p.Version,
			"pro", p.Pro,
			"in_call", p.InCall,
			"users", p.UserCount,
		)
	}
	c.ponged = true
	c.pro = p.Pro
	if c.mode != ModeUnknown {
		return
	}
	if p.Pro {
		c.setMode(ctx, ModePrimary)
	} else {
		c.setMode(ctx, ModeSecondary)
	}
}

func (c *Conductor) onRoster(ctx context.Context, ev event.Event, relayed bool) {
	h, ok := headerOf(ev)
	if !ok {
		return
	}
	if !h.HasID() {
		c.logger.DebugContext(ctx, "ignoring event without participant id", "kind", string(ev.Kind()), "name", h.Name)
		return
	}
	// a secondary is told who it is by the primary
	if h.Self && !relayed && c.mode != ModeSecondary {
		c.learnSelf(ctx, ev, h)
	}
	if c.mode == ModeSecondary && !relayed {
		return
	}

	switch e := ev.(type) {
	case event.Audio:
		c.roster.RecordEvent(roster.FieldAudio, e.ID, boolInt(e.On))
	case event.Video:
		c.roster.RecordEvent(roster.FieldVideo, e.ID, boolInt(e.On))
	case event.Role:
		if e.Role == event.Unset {
			return
		}
		c.roster.RecordEvent(roster.FieldRole, e.ID, e.Role)
	case event.Rename:
		c.roster.Rename(e.ID, e.Name)
	case event.Online:
		c.roster.Online(e.ID, e.Name)
	case event.Offline:
		c.roster.Remove(e.ID)
	case event.List:
		if c.roster.UpsertFromSnapshot(roster.EntryFromList(e)) {
			c.logger.DebugContext(ctx, "snapshot reported participant offline", "id", e.ID)
		}
		if c.isPrimary() && !relayed {
			c.relaySnapshot(ctx, e.Raw)
		}
	}
}

// learnSelf records the own session from locally observed "me" events.
func (c *Conductor) learnSelf(ctx context.Context, ev event.Event, h event.Header) {
	if ev.Kind() == event.KindOffline {
		return
	}
	if c.self.Known && c.self.ID == h.ID && c.self.Name == h.Name {
		return
	}
	c.self = Identity{ID: h.ID, Name: h.Name, Known: true}
	c.logger.InfoContext(ctx, "own identity observed", "id", h.ID, "name", h.Name)
}

func headerOf(ev event.Event) (event.Header, bool) {
	switch e := ev.(type) {
	case event.Chat:
		return e.Header, true
	case event.Audio:
		return e.Header, true
	case event.Video:
		return e.Header, true
	case event.Role:
		return e.Header, true
	case event.Rename:
		return e.Header, true
	case event.Online:
		return e.Header, true
	case event.Offline:
		return e.Header, true
	case event.List:
		return e.Header, true
	}
	return event.Header{}, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
