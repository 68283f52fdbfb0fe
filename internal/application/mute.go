package application

import (
	"context"

	"github.com/example/meeting-conductor/internal/roster"
)

func (c *Conductor) handleMuteAll(ctx context.Context, _ command) error {
	c.send(ctx, AddressMuteAll)
	return nil
}

func (c *Conductor) handleUnmuteAll(ctx context.Context, _ command) error {
	c.send(ctx, AddressUnmuteAll)
	return nil
}

// handleMuteExcept unmutes the group and mutes everyone else. A missing or
// empty group mutes everyone.
func (c *Conductor) handleMuteExcept(ctx context.Context, cmd command) error {
	name := groupArg(cmd.args, DefaultMuteGroup)
	members := c.members(name)
	if len(members) == 0 {
		cmd.logger.DebugContext(ctx, "group missing or empty, muting everyone", "group", name)
		c.send(ctx, AddressMuteAll)
		return nil
	}
	c.send(ctx, AddressUnmuteIDs, idArgs(members)...)
	c.send(ctx, AddressMuteAllExcept, idArgs(members)...)
	return nil
}

// handleUnmuteExcept unmutes participants outside the group who are muted
// with their video on.
func (c *Conductor) handleUnmuteExcept(ctx context.Context, cmd command) error {
	name := groupArg(cmd.args, DefaultMuteGroup)
	var ids []int
	for _, p := range c.roster.Participants() {
		if c.isSelf(p.ID) || c.roster.InGroup(name, p.ID) {
			continue
		}
		if !p.Audio && p.Video {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	c.send(ctx, AddressUnmuteIDs, idArgs(ids)...)
	return nil
}

func (c *Conductor) handleMuteGroup(ctx context.Context, cmd command) error {
	return c.sendToGroup(ctx, cmd, AddressMuteIDs)
}

func (c *Conductor) handleUnmuteGroup(ctx context.Context, cmd command) error {
	return c.sendToGroup(ctx, cmd, AddressUnmuteIDs)
}

func (c *Conductor) sendToGroup(ctx context.Context, cmd command, address string) error {
	if len(cmd.args) == 0 {
		return &UsageError{Usage: c.commands[cmd.verb].usage}
	}
	name := cmd.args[0]
	if _, ok := c.roster.ListGroup(name); !ok {
		return &NotFoundError{Kind: "group", Name: name}
	}
	members := c.members(name)
	if len(members) == 0 {
		return nil
	}
	c.send(ctx, address, idArgs(members)...)
	return nil
}

// members returns the group's ids without skip placeholders.
func (c *Conductor) members(group string) []int {
	ids, _ := c.roster.ListGroup(group)
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id != roster.SkipID {
			out = append(out, id)
		}
	}
	return out
}

func groupArg(args []string, fallback string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return fallback
}
