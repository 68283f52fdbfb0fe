package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/example/meeting-conductor/internal/relay"
	"github.com/example/meeting-conductor/internal/roster"
)

// handlePin pairs the support devices with the group slot by slot and pins
// each slot's participant on its device.
func (c *Conductor) handlePin(ctx context.Context, cmd command) error {
	if len(cmd.args) == 0 {
		return &UsageError{Usage: c.commands[cmd.verb].usage}
	}
	targets, ok := c.roster.ListGroup(cmd.args[0])
	if !ok {
		return &NotFoundError{Kind: "group", Name: cmd.args[0]}
	}
	support, ok := c.roster.ListGroup(GroupSupport)
	if !ok {
		return &NotFoundError{Kind: "group", Name: GroupSupport}
	}

	pinned := 0
	for i := 0; i < len(support) && i < len(targets); i++ {
		device, target := support[i], targets[i]
		if device == roster.SkipID || target == roster.SkipID {
			continue
		}
		p, ok := c.roster.Get(target)
		if !ok {
			cmd.logger.DebugContext(ctx, "pin target no longer present", "slot", i+1, "id", target)
			continue
		}
		c.runOn(ctx, device, AddressPin, p.Name)
		pinned++
	}
	c.reply(ctx, cmd.sender.ID, fmt.Sprintf("Pinned %d slot(s).", pinned))
	return nil
}

// handleMultiPin pins every member of a group on the support device in the
// given 1-based slot.
func (c *Conductor) handleMultiPin(ctx context.Context, cmd command) error {
	if len(cmd.args) < 2 {
		return &UsageError{Usage: c.commands[cmd.verb].usage}
	}
	slot, err := strconv.Atoi(cmd.args[0])
	if err != nil || slot < 1 {
		return &UsageError{Usage: c.commands[cmd.verb].usage}
	}
	support, ok := c.roster.ListGroup(GroupSupport)
	if !ok {
		return &NotFoundError{Kind: "group", Name: GroupSupport}
	}
	if slot > len(support) {
		return &NotFoundError{Kind: "support slot", Name: cmd.args[0]}
	}
	targets, ok := c.roster.ListGroup(cmd.args[1])
	if !ok {
		return &NotFoundError{Kind: "group", Name: cmd.args[1]}
	}

	device := support[slot-1]
	if device == roster.SkipID {
		return nil
	}
	c.runOn(ctx, device, AddressClearPin)
	pinned := 0
	for _, target := range targets {
		if target == roster.SkipID {
			continue
		}
		if p, ok := c.roster.Get(target); ok {
			c.runOn(ctx, device, AddressAddPin, p.Name)
			pinned++
		}
	}
	c.reply(ctx, cmd.sender.ID, fmt.Sprintf("Pinned %d participant(s) on slot %d.", pinned, slot))
	return nil
}

// runOn sends a control-plane command from the given session: directly when
// it is this instance, otherwise as an envelope for that device to run.
func (c *Conductor) runOn(ctx context.Context, session int, address string, args ...any) {
	if c.isSelf(session) {
		c.send(ctx, address, args...)
		return
	}
	c.sendEnvelope(ctx, relay.Envelope{Target: session, Command: address, Args: args})
}
