package application

import (
	"context"
	"fmt"
)

// beginTick starts a scheduler tick. The schedule file check runs off the
// loop and its result re-enters through c.refreshed; a tick arriving while
// one is pending is skipped.
func (c *Conductor) beginTick(ctx context.Context) {
	if c.tickPending {
		c.logger.DebugContext(ctx, "previous tick still pending, skipping")
		return
	}
	if c.source == nil {
		c.completeTick(ctx, refreshResult{})
		return
	}

	c.tickPending = true
	go func() {
		res := c.checkSource()
		select {
		case c.refreshed <- res:
		case <-ctx.Done():
		}
	}()
}

func (c *Conductor) checkSource() refreshResult {
	if c.source == nil {
		return refreshResult{}
	}
	refresh, err := c.source.Check()
	return refreshResult{refresh: refresh, err: err}
}

// completeTick runs on the loop: schedule decisions, co-host promotion,
// the staleness sweep and a fresh roster request.
func (c *Conductor) completeTick(ctx context.Context, res refreshResult) {
	c.tickPending = false
	now := c.now()

	if res.err != nil {
		c.logger.ErrorContext(ctx, "schedule refresh failed, skipping meeting decisions", "error", res.err)
	} else {
		if res.refresh.Changed {
			c.sched.Load(res.refresh.File, now)
			c.logger.InfoContext(ctx, "schedule loaded",
				"meetings", len(c.sched.Meetings()),
				"conflicts", len(c.sched.Conflicts()),
				"digest", fmt.Sprintf("%x", res.refresh.Digest[:8]),
			)
		}
		c.runMeetingActions(ctx, now)
	}

	if c.isPrimary() {
		c.promoteCoHosts(ctx)
	}
	c.sweep(ctx)
	if c.isPrimary() {
		c.send(ctx, AddressList)
	}
}

func (c *Conductor) sweep(ctx context.Context) {
	result := c.roster.SweepStale(c.opts.StaleCycles)
	if len(result.Deleted) > 0 {
		c.logger.DebugContext(ctx, "dropped stale participants", "ids", result.Deleted)
	}
	for _, id := range result.Retained {
		if c.notices.Allow(fmt.Sprintf("stale:%d", id)) {
			c.logger.WarnContext(ctx, "participant not seen but still referenced by a group", "id", id)
		}
	}
}
