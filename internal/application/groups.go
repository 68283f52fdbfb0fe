package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/meeting-conductor/internal/roster"
)

// skipToken in a member list keeps a slot empty.
const skipToken = "-"

// resolveNames maps display names to ids in order. A name held by several
// sessions contributes all of them.
func (c *Conductor) resolveNames(names []string) (ids []int, missing []string) {
	ids = make([]int, 0, len(names))
	for _, name := range names {
		if name == skipToken {
			ids = append(ids, roster.SkipID)
			continue
		}
		found, ok := c.roster.IDsByName(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		ids = append(ids, found...)
	}
	return ids, missing
}

func (c *Conductor) handleGroup(ctx context.Context, cmd command) error {
	switch len(cmd.args) {
	case 0:
		return c.handleListGroups(ctx, cmd)
	case 1:
		name := cmd.args[0]
		ids, ok := c.roster.ListGroup(name)
		if !ok {
			return &NotFoundError{Kind: "group", Name: name}
		}
		c.reply(ctx, cmd.sender.ID, c.formatGroup(name, ids))
		return nil
	}

	name := cmd.args[0]
	ids, missing := c.resolveNames(cmd.args[1:])
	c.roster.DefineGroup(name, ids)
	c.reply(ctx, cmd.sender.ID, withMissing(c.formatGroup(name, ids), missing))
	return nil
}

func (c *Conductor) handleGroupAppend(ctx context.Context, cmd command) error {
	if len(cmd.args) < 2 {
		return &UsageError{Usage: c.commands[cmd.verb].usage}
	}
	name := cmd.args[0]
	ids, missing := c.resolveNames(cmd.args[1:])
	added := c.roster.AppendToGroup(name, ids)
	current, _ := c.roster.ListGroup(name)
	text := fmt.Sprintf("Added %d to %s", len(added), c.formatGroup(name, current))
	if dropped := countSkips(ids) - countSkips(added); dropped > 0 {
		text += fmt.Sprintf("\nSkipped %d placeholder(s): %s already has an empty slot.", dropped, name)
	}
	c.reply(ctx, cmd.sender.ID, withMissing(text, missing))
	return nil
}

func (c *Conductor) handleGroupDelete(ctx context.Context, cmd command) error {
	if len(cmd.args) == 0 {
		return &UsageError{Usage: c.commands[cmd.verb].usage}
	}
	name := cmd.args[0]
	if !c.roster.DeleteGroup(name) {
		return &NotFoundError{Kind: "group", Name: name}
	}
	c.reply(ctx, cmd.sender.ID, fmt.Sprintf("Deleted group %s.", name))
	return nil
}

func (c *Conductor) handleListGroups(ctx context.Context, cmd command) error {
	names := c.roster.GroupNames()
	if len(names) == 0 {
		c.reply(ctx, cmd.sender.ID, "No groups defined.")
		return nil
	}
	lines := make([]string, 0, len(names))
	for _, name := range names {
		ids, _ := c.roster.ListGroup(name)
		lines = append(lines, c.formatGroup(name, ids))
	}
	c.reply(ctx, cmd.sender.ID, strings.Join(lines, "\n"))
	return nil
}

// handleClearGroups deletes every group but the device registry.
func (c *Conductor) handleClearGroups(ctx context.Context, cmd command) error {
	devices, hasDevices := c.roster.ListGroup(GroupDevices)
	cleared := c.roster.ClearAllGroups()
	if hasDevices {
		c.roster.DefineGroup(GroupDevices, devices)
		cleared--
	}
	c.reply(ctx, cmd.sender.ID, fmt.Sprintf("Cleared %d group(s).", cleared))
	return nil
}

func (c *Conductor) formatGroup(name string, ids []int) string {
	if len(ids) == 0 {
		return name + ": (empty)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = c.describe(id)
	}
	return name + ": " + strings.Join(parts, ", ")
}

// describe names a group slot for chat output.
func (c *Conductor) describe(id int) string {
	if id == roster.SkipID {
		return skipToken
	}
	if p, ok := c.roster.Get(id); ok {
		return p.Name
	}
	return fmt.Sprintf("#%d", id)
}

func withMissing(text string, missing []string) string {
	if len(missing) == 0 {
		return text
	}
	return text + "\nNot found: " + strings.Join(missing, ", ")
}

func countSkips(ids []int) int {
	n := 0
	for _, id := range ids {
		if id == roster.SkipID {
			n++
		}
	}
	return n
}
