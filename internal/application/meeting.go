package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/example/meeting-conductor/internal/scheduler"
)

func (c *Conductor) runMeetingActions(ctx context.Context, now time.Time) {
	if !c.sched.Loaded() {
		return
	}
	for _, action := range c.sched.Tick(now) {
		switch action.Kind {
		case scheduler.ActionStart:
			c.startMeeting(ctx, action)
		case scheduler.ActionWarn:
			c.warnMeeting(ctx, action)
		case scheduler.ActionEnd:
			c.endMeeting(ctx, action.Meeting, "hard_cap", 0)
		}
	}
}

func (c *Conductor) startMeeting(ctx context.Context, action scheduler.Action) {
	m := action.Meeting
	logger := c.logger.With("meeting", m.Name, "hard_end", action.HardEnd)
	if m.MeetingID == "" {
		logger.InfoContext(ctx, "meeting window opened without a meeting id, not joining")
		c.journalMeeting(ctx, "start", m, 0, "no_meeting_id")
		return
	}

	c.checkCapability(ctx, "join")
	c.send(ctx, AddressJoinMeeting, m.MeetingID, m.Password, c.displayName())
	logger.InfoContext(ctx, "joining meeting", "meeting_id", m.MeetingID)
	c.journalMeeting(ctx, "start", m, 0, "ok")
}

func (c *Conductor) warnMeeting(ctx context.Context, action scheduler.Action) {
	if !c.isPrimary() {
		return
	}
	text := fmt.Sprintf("Meeting %q ends at about %s. Send /extend <codeword> [minutes] to extend it.",
		action.Meeting.Name, c.clock(action.HardEnd))
	c.notifyPrivileged(ctx, text)
	c.journalMeeting(ctx, "warn", action.Meeting, 0, "ok")
}

// endMeeting ends the meeting on a primary and leaves it on any other
// instance.
func (c *Conductor) endMeeting(ctx context.Context, m scheduler.Meeting, reason string, actorID int) {
	c.checkCapability(ctx, "end")
	if c.isPrimary() {
		c.send(ctx, AddressEndMeeting)
	} else {
		c.send(ctx, AddressLeaveMeeting)
	}
	c.logger.InfoContext(ctx, "meeting ended", "meeting", m.Name, "reason", reason, "mode", string(c.mode))
	c.journalMeeting(ctx, "end", m, actorID, reason)
}

// checkCapability warns when the control plane lacks the Pro capability
// that meeting control needs. The action is attempted regardless.
func (c *Conductor) checkCapability(ctx context.Context, action string) {
	if c.pro || !c.notices.Allow("capability:"+action) {
		return
	}
	c.logger.WarnContext(ctx, "control plane lacks the Pro capability, attempting anyway", "action", action)
	if c.isPrimary() {
		c.notifyPrivileged(ctx, fmt.Sprintf("Warning: ZoomOSC Pro is required to %s meetings; trying anyway.", action))
	}
}

// promoteCoHosts makes every present, unprivileged participant named in the
// current meeting's co-host list a co-host.
func (c *Conductor) promoteCoHosts(ctx context.Context) int {
	m, ok := c.sched.Current()
	if !ok {
		return 0
	}
	promoted := 0
	for _, name := range m.CoHosts {
		participants, ok := c.roster.LookupByName(name)
		if !ok {
			continue
		}
		for _, p := range participants {
			if p.Privileged() || c.isSelf(p.ID) {
				continue
			}
			c.send(ctx, AddressMakeCoHost, p.ID)
			c.logger.InfoContext(ctx, "promoting co-host", "meeting", m.Name, "id", p.ID, "name", p.Name)
			promoted++
		}
	}
	return promoted
}

func (c *Conductor) handleExtend(ctx context.Context, cmd command) error {
	d := c.opts.DefaultExtend
	if len(cmd.args) > 0 {
		minutes, err := strconv.Atoi(cmd.args[0])
		if err != nil || minutes <= 0 {
			return &UsageError{Usage: c.commands[cmd.verb].usage}
		}
		d = time.Duration(minutes) * time.Minute
	}

	m, err := c.sched.Extend(d)
	if err != nil {
		return err
	}
	c.notifyPrivileged(ctx, fmt.Sprintf("Meeting %q extended by %d minutes; it now ends at about %s.",
		m.Name, int(d/time.Minute), c.clock(m.HardEnd)), cmd.sender.ID)
	c.journalMeeting(ctx, "extend", m, cmd.sender.ID, "ok")
	return nil
}

func (c *Conductor) handleEnd(ctx context.Context, cmd command) error {
	m, err := c.sched.EndNow()
	if err != nil {
		return err
	}
	c.notifyPrivileged(ctx, fmt.Sprintf("Meeting %q is being ended by %s.", m.Name, cmd.sender.Name), cmd.sender.ID)
	c.endMeeting(ctx, m, "command", cmd.sender.ID)
	return nil
}

func (c *Conductor) handleClaim(ctx context.Context, cmd command) error {
	c.send(ctx, AddressMakeCoHost, cmd.sender.ID)
	return nil
}

func (c *Conductor) handleCoHost(ctx context.Context, cmd command) error {
	if _, ok := c.sched.Current(); !ok {
		return scheduler.ErrNoCurrentMeeting
	}
	n := c.promoteCoHosts(ctx)
	c.reply(ctx, cmd.sender.ID, fmt.Sprintf("Promoted %d participant(s) to co-host.", n))
	return nil
}

func (c *Conductor) displayName() string {
	if c.self.Name != "" {
		return c.self.Name
	}
	return c.opts.SelfName
}

// clock renders t in the schedule's own time zone.
func (c *Conductor) clock(t time.Time) string {
	return t.Format("15:04")
}
