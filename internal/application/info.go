package application

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

func (c *Conductor) handleHelp(ctx context.Context, cmd command) error {
	verbs := make([]string, 0, len(c.commands))
	for verb, spec := range c.commands {
		if spec.gate == gateEnvelope {
			continue
		}
		verbs = append(verbs, verb)
	}
	slices.Sort(verbs)

	var b strings.Builder
	b.WriteString("Commands:")
	for _, verb := range verbs {
		spec := c.commands[verb]
		fmt.Fprintf(&b, "\n%s - %s", spec.usage, spec.summary)
	}
	c.reply(ctx, cmd.sender.ID, b.String())
	return nil
}

// handleState logs the full snapshot and answers with a one-line summary.
func (c *Conductor) handleState(ctx context.Context, cmd command) error {
	snap := c.snapshot()
	cmd.logger.InfoContext(ctx, "state requested",
		"mode", string(snap.Mode),
		"pro", snap.Pro,
		"identity", snap.Identity,
		"scheduler_state", string(snap.State),
		"participants", len(snap.Participants),
		"groups", snap.Groups,
		"meetings", len(snap.Meetings),
	)

	self := "unknown"
	if snap.Identity.Known {
		self = fmt.Sprintf("%d/%s", snap.Identity.ID, snap.Identity.Name)
	}
	meeting := "none"
	if snap.Current != nil {
		meeting = fmt.Sprintf("%s until %s", snap.Current.Name, c.clock(snap.Current.HardEnd))
	}
	c.reply(ctx, cmd.sender.ID, fmt.Sprintf("mode=%s self=%s participants=%d groups=%d meeting=%s",
		snap.Mode, self, len(snap.Participants), len(snap.Groups), meeting))
	return nil
}

func (c *Conductor) handleList(ctx context.Context, _ command) error {
	c.send(ctx, AddressList)
	return nil
}
