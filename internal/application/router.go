package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/example/meeting-conductor/internal/chat"
	"github.com/example/meeting-conductor/internal/event"
	"github.com/example/meeting-conductor/internal/logging"
	"github.com/example/meeting-conductor/internal/relay"
	"github.com/example/meeting-conductor/internal/roster"
)

// gate selects the authorization applied before a handler runs.
type gate int

const (
	// gatePrivileged requires a host or co-host sender on a primary.
	gatePrivileged gate = iota
	// gateOpen lets anyone run the command.
	gateOpen
	// gateCodeword requires the meeting codeword as the first argument.
	gateCodeword
	// gateEnvelope defers every check to the envelope handler.
	gateEnvelope
)

type command struct {
	verb   string
	args   []string
	line   string
	sender event.Header
	logger *slog.Logger
	// sensitive commands carry a secret in args; they are never logged or
	// journaled.
	sensitive bool
}

// auditArgs returns the arguments safe to log and journal.
func (cmd command) auditArgs() []string {
	if cmd.sensitive {
		return nil
	}
	return cmd.args
}

type commandSpec struct {
	gate gate
	// secondary allows the command on instances that are not primary.
	secondary bool
	sensitive bool
	usage     string
	summary   string
	handle    func(ctx context.Context, cmd command) error
}

func (c *Conductor) commandTable() (map[string]commandSpec, map[string]string) {
	commands := map[string]commandSpec{
		"/whoami": {gate: gateOpen, sensitive: true, usage: "/whoami [codeword]", summary: "show your session id and name", handle: c.handleWhoAmI},
		"/state":  {gate: gateOpen, secondary: true, usage: "/state", summary: "summarise this instance's state", handle: c.handleState},

		relay.Prefix: {gate: gateEnvelope, secondary: true, usage: relay.Prefix + " <envelope>", summary: "run a relayed command", handle: c.handleEnvelope},

		"/extend": {gate: gateCodeword, usage: "/extend <codeword> [minutes]", summary: "push back the current meeting's end", handle: c.handleExtend},
		"/end":    {gate: gateCodeword, usage: "/end <codeword>", summary: "end the current meeting now", handle: c.handleEnd},
		"/claim":  {gate: gateCodeword, usage: "/claim <codeword>", summary: "become co-host", handle: c.handleClaim},

		"/h":       {usage: "/h", summary: "this help", handle: c.handleHelp},
		"/ma":      {usage: "/ma", summary: "mute everyone", handle: c.handleMuteAll},
		"/ua":      {usage: "/ua", summary: "unmute everyone", handle: c.handleUnmuteAll},
		"/mx":      {usage: "/mx [group]", summary: "mute everyone except a group", handle: c.handleMuteExcept},
		"/ux":      {usage: "/ux [group]", summary: "unmute muted participants with video, except a group", handle: c.handleUnmuteExcept},
		"/m":       {usage: "/m <group>", summary: "mute a group", handle: c.handleMuteGroup},
		"/u":       {usage: "/u <group>", summary: "unmute a group", handle: c.handleUnmuteGroup},
		"/g":       {usage: "/g [group [names...]]", summary: "list groups, show one, or define one", handle: c.handleGroup},
		"/ga":      {usage: "/ga <group> <names...>", summary: "append names to a group", handle: c.handleGroupAppend},
		"/gd":      {usage: "/gd <group>", summary: "delete a group", handle: c.handleGroupDelete},
		"/gl":      {usage: "/gl", summary: "list all groups", handle: c.handleListGroups},
		"/gclear":  {usage: "/gclear", summary: "delete all groups except devices", handle: c.handleClearGroups},
		"/p":       {usage: "/p <group>", summary: "pin a group across the support devices", handle: c.handlePin},
		"/mp":      {usage: "/mp <slot> <group>", summary: "pin a whole group on one support device", handle: c.handleMultiPin},
		"/xremote": {usage: "/xremote <name> <command> [args...]", summary: "run a command on every session with that name", handle: c.handleRemote},
		"/list":    {usage: "/list", summary: "refresh the roster", handle: c.handleList},
		"/cohost":  {usage: "/cohost", summary: "promote the meeting's co-hosts now", handle: c.handleCoHost},
	}
	aliases := map[string]string{
		"/help":     "/h",
		"/mute":     "/m",
		"/unmute":   "/u",
		"/grp":      "/g",
		"/group":    "/g",
		"/gadd":     "/ga",
		"/gdel":     "/gd",
		"/groups":   "/gl",
		"/pin":      "/p",
		"/mpin":     "/mp",
		"/multipin": "/mp",
	}
	return commands, aliases
}

// dispatch runs one chat line through the gates and into its handler.
func (c *Conductor) dispatch(ctx context.Context, sender event.Header, line string) {
	var words []string
	if relay.IsEnvelope(line) {
		// envelope JSON must reach the decoder untouched
		words = []string{relay.Prefix}
	} else {
		words = chat.Words(line)
	}
	if len(words) == 0 || !strings.HasPrefix(words[0], "/") {
		return
	}

	verb := strings.ToLower(words[0])
	if canonical, ok := c.aliases[verb]; ok {
		verb = canonical
	}
	cmd := command{
		verb:   verb,
		args:   words[1:],
		line:   line,
		sender: sender,
		logger: commandLogger(ctx, c.logger, verb, sender.ID),
	}
	ctx = logging.ContextWithLogger(ctx, cmd.logger)

	spec, known := c.commands[verb]
	cmd.sensitive = spec.sensitive
	if known && spec.gate != gatePrivileged {
		if !spec.secondary && !c.isPrimary() {
			cmd.logger.DebugContext(ctx, "command dropped on non-primary instance", "mode", string(c.mode))
			return
		}
		if spec.gate == gateCodeword {
			supplied := ""
			if len(cmd.args) > 0 {
				supplied, cmd.args = cmd.args[0], cmd.args[1:]
			}
			if err := VerifyCodeword(c.sched.Codeword(), supplied); err != nil {
				c.fail(ctx, cmd, err)
				return
			}
		}
		c.execute(ctx, cmd, spec)
		return
	}

	if !c.isPrimary() {
		cmd.logger.DebugContext(ctx, "command dropped on non-primary instance", "mode", string(c.mode))
		return
	}
	if privilege := c.roster.IsPrivileged(sender.ID); privilege != roster.PrivilegeGranted {
		cmd.logger.WarnContext(ctx, "command rejected", "privilege", privilege.String())
		c.fail(ctx, cmd, ErrUnauthorized)
		return
	}
	if !known {
		c.fail(ctx, cmd, ErrUnimplemented)
		return
	}
	c.execute(ctx, cmd, spec)
}

func (c *Conductor) execute(ctx context.Context, cmd command, spec commandSpec) {
	if err := spec.handle(ctx, cmd); err != nil {
		c.fail(ctx, cmd, err)
		return
	}
	if spec.gate == gateEnvelope {
		return
	}
	cmd.logger.InfoContext(ctx, "command handled", "args", cmd.auditArgs())
	c.journalCommand(ctx, cmd, nil)
}

// fail answers the sender with the error's reply text.
func (c *Conductor) fail(ctx context.Context, cmd command, err error) {
	cmd.logger.WarnContext(ctx, "command failed",
		"error_kind", ErrorKind(err),
		"error", err,
	)
	c.reply(ctx, cmd.sender.ID, replyText(err))
	c.journalCommand(ctx, cmd, err)
}
