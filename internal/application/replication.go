package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/meeting-conductor/internal/chat"
	"github.com/example/meeting-conductor/internal/event"
	"github.com/example/meeting-conductor/internal/relay"
	"github.com/example/meeting-conductor/internal/roster"
)

// controlPrefix limits which relayed commands a device will execute.
const controlPrefix = "/zoom/"

func (c *Conductor) sendEnvelope(ctx context.Context, env relay.Envelope) {
	if env.ID == "" {
		env.ID = c.newID()
	}
	line, err := relay.Encode(env)
	if err != nil {
		c.logger.ErrorContext(ctx, "encoding envelope failed", "command", env.Command, "target", env.Target, "error", err)
		return
	}
	c.reply(ctx, env.Target, line)
}

// relaySnapshot forwards one roster snapshot row to every registered device.
func (c *Conductor) relaySnapshot(ctx context.Context, raw event.Raw) {
	devices, ok := c.roster.ListGroup(GroupDevices)
	if !ok {
		return
	}
	for _, id := range devices {
		if id == roster.SkipID || c.isSelf(id) {
			continue
		}
		row := raw
		c.sendEnvelope(ctx, relay.Envelope{Target: id, Command: relay.CommandEvent, Event: &row})
	}
}

// handleRemote relays a sub-command to every session holding a name.
func (c *Conductor) handleRemote(ctx context.Context, cmd command) error {
	if len(cmd.args) < 2 {
		return &UsageError{Usage: c.commands[cmd.verb].usage}
	}
	name := cmd.args[0]
	ids, ok := c.roster.IDsByName(name)
	if !ok {
		return &NotFoundError{Kind: "participant", Name: name}
	}
	args := wireArgs(cmd.args[2:])
	for _, id := range ids {
		c.runOn(ctx, id, cmd.args[1], args...)
	}
	c.reply(ctx, cmd.sender.ID, fmt.Sprintf("Relayed %s to %d session(s) named %s.", cmd.args[1], len(ids), name))
	return nil
}

// handleEnvelope executes an envelope addressed to this instance. Problems
// are logged, never answered, so a misrouted envelope cannot start a chat
// loop between instances.
func (c *Conductor) handleEnvelope(ctx context.Context, cmd command) error {
	env, err := relay.Decode(cmd.line)
	if err != nil {
		cmd.logger.WarnContext(ctx, "dropping malformed envelope", "error", err)
		return nil
	}
	if c.roster.IsPrivileged(cmd.sender.ID) == roster.PrivilegeNone {
		cmd.logger.WarnContext(ctx, "dropping envelope from unprivileged sender", "envelope_id", env.ID)
		return nil
	}
	if !c.envelope.Remember(env.ID) {
		cmd.logger.DebugContext(ctx, "dropping duplicate envelope", "envelope_id", env.ID)
		return nil
	}
	logger := cmd.logger.With("envelope_id", env.ID, "envelope_command", env.Command, "target", env.Target)

	switch {
	case env.Command == relay.CommandYouAre:
		c.adoptIdentity(ctx, env)
	case !c.self.Known || env.Target != c.self.ID:
		logger.DebugContext(ctx, "envelope addressed to another session")
	case env.Command == relay.CommandEvent:
		if c.isPrimary() {
			logger.DebugContext(ctx, "primary ignores relayed roster events")
			return nil
		}
		c.apply(ctx, event.Parse(*env.Event), true)
	case strings.HasPrefix(env.Command, controlPrefix):
		logger.DebugContext(ctx, "running relayed command")
		c.send(ctx, env.Command, env.Args...)
	default:
		logger.WarnContext(ctx, "refusing relayed command outside the control-plane vocabulary")
	}
	return nil
}

// adoptIdentity accepts the primary's answer to /whoami. It is honoured
// before the own identity is known, or when addressed to it.
func (c *Conductor) adoptIdentity(ctx context.Context, env relay.Envelope) {
	if c.isPrimary() {
		return
	}
	if c.self.Known && env.Target != c.self.ID {
		return
	}
	name := c.self.Name
	if len(env.Args) > 0 {
		name = event.String(env.Args[0])
	}
	c.self = Identity{ID: env.Target, Name: name, Known: true}
	c.registered = true
	c.logger.InfoContext(ctx, "identity assigned by primary", "id", env.Target, "name", name)
}

// handleWhoAmI answers with the sender's session. With a valid codeword the
// sender is registered as a device and told its identity in an envelope.
func (c *Conductor) handleWhoAmI(ctx context.Context, cmd command) error {
	c.reply(ctx, cmd.sender.ID, fmt.Sprintf("%d/%s", cmd.sender.ID, cmd.sender.Name))
	if len(cmd.args) == 0 {
		return nil
	}

	err := VerifyCodeword(c.sched.DefaultCodeword(), cmd.args[0])
	if err != nil && c.sched.Codeword() != c.sched.DefaultCodeword() {
		err = VerifyCodeword(c.sched.Codeword(), cmd.args[0])
	}
	if err != nil {
		return err
	}

	if added := c.roster.AppendToGroup(GroupDevices, []int{cmd.sender.ID}); len(added) > 0 {
		cmd.logger.InfoContext(ctx, "device registered", "name", cmd.sender.Name)
	}
	c.sendEnvelope(ctx, relay.Envelope{
		Target:  cmd.sender.ID,
		Command: relay.CommandYouAre,
		Args:    []any{cmd.sender.Name},
	})
	// a fresh snapshot brings the new device up to date
	c.send(ctx, AddressList)
	return nil
}

// discover retries the ping until answered and, on a secondary the primary
// has not yet registered, asks the primary who this instance is.
func (c *Conductor) discover(ctx context.Context) {
	if !c.ponged {
		c.send(ctx, AddressPing)
	}
	if c.mode != ModeSecondary || c.registered {
		return
	}

	words := []string{"/whoami"}
	if codeword := c.sched.DefaultCodeword(); codeword != "" {
		if IsHashedCodeword(codeword) {
			if c.notices.Allow("whoami:hashed") {
				c.logger.WarnContext(ctx, "default codeword is hashed and cannot be sent; registration will fail")
			}
		} else {
			words = append(words, codeword)
		}
	}
	text := chat.Join(words)
	if c.opts.PrimaryName != "" {
		c.send(ctx, AddressChatName, c.opts.PrimaryName, text)
		return
	}
	c.send(ctx, AddressChatAll, text)
}

// wireArgs converts integer words to ints so relayed commands carry
// control-plane integers.
func wireArgs(words []string) []any {
	args := make([]any, len(words))
	for i, w := range words {
		if n, err := strconv.Atoi(w); err == nil && n == int(int32(n)) {
			args[i] = n
			continue
		}
		args[i] = w
	}
	return args
}
