package application

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/example/meeting-conductor/internal/event"
	"github.com/example/meeting-conductor/internal/relay"
	"github.com/example/meeting-conductor/internal/roster"
	"github.com/example/meeting-conductor/internal/scheduler"
)

// ErrStopped is returned by Deliver and Snapshot when the loop has exited.
var ErrStopped = errors.New("application: conductor stopped")

// ScheduleSource reports whether the schedule file changed. Check may block
// on file I/O and is called off the event loop.
type ScheduleSource interface {
	Check() (scheduler.Refresh, error)
}

// Options tunes the conductor. Zero values select the defaults.
type Options struct {
	// Mode forces primary or secondary behaviour; ModeAuto discovers it.
	Mode Mode
	// PrimaryName is the display name secondaries ask for their identity.
	PrimaryName string
	// SelfName is used as the join display name until the own name is known.
	SelfName string

	TickInterval      time.Duration
	DiscoveryInterval time.Duration
	WarnWindow        time.Duration
	DefaultExtend     time.Duration
	// StaleCycles is the number of consecutive unseen sweeps before an
	// ungrouped participant is dropped.
	StaleCycles int
	Location    *time.Location
	// InboundBuffer bounds messages waiting for the loop.
	InboundBuffer int
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeAuto
	}
	if o.SelfName == "" {
		o.SelfName = "conductor"
	}
	if o.TickInterval <= 0 {
		o.TickInterval = 30 * time.Second
	}
	if o.DiscoveryInterval <= 0 {
		o.DiscoveryInterval = 10 * time.Second
	}
	if o.WarnWindow <= 0 {
		o.WarnWindow = scheduler.DefaultWarnWindow
	}
	if o.DefaultExtend <= 0 {
		o.DefaultExtend = 15 * time.Minute
	}
	if o.StaleCycles <= 0 {
		o.StaleCycles = 1
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.InboundBuffer <= 0 {
		o.InboundBuffer = 256
	}
	return o
}

type refreshResult struct {
	refresh scheduler.Refresh
	err     error
}

// Conductor owns the roster, the scheduler and the session identity. Every
// field below is touched only from the goroutine running Run.
type Conductor struct {
	opts    Options
	sender  Sender
	source  ScheduleSource
	journal Journal
	logger  *slog.Logger
	newID   func() string
	now     func() time.Time

	roster   *roster.Store
	sched    *scheduler.Scheduler
	envelope *relay.Window
	notices  *noticeCache

	mode   Mode
	pro    bool
	ponged bool
	self   Identity
	// registered is set once the primary has answered /whoami with youare.
	registered bool

	tickPending bool

	inbound   chan event.Raw
	refreshed chan refreshResult
	snapshots chan chan Snapshot
	done      chan struct{}

	commands map[string]commandSpec
	aliases  map[string]string
}

// NewConductor wires a conductor. source and journal may be nil.
func NewConductor(opts Options, sender Sender, source ScheduleSource, journal Journal, idGenerator func() string, now func() time.Time) *Conductor {
	return NewConductorWithLogger(opts, sender, source, journal, idGenerator, now, nil)
}

// NewConductorWithLogger is NewConductor with an explicit logger.
func NewConductorWithLogger(opts Options, sender Sender, source ScheduleSource, journal Journal, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Conductor {
	opts = opts.withDefaults()
	logger = defaultLogger(logger)
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if journal == nil {
		journal = discardJournal{}
	}

	c := &Conductor{
		opts:    opts,
		sender:  sender,
		source:  source,
		journal: journal,
		logger:  logger,
		newID:   idGenerator,
		now:     now,
		roster:  roster.NewStore(),
		sched: scheduler.New(scheduler.Options{
			Location:   opts.Location,
			WarnWindow: opts.WarnWindow,
			Logger:     logger.With("component", "scheduler"),
		}),
		envelope:  relay.NewWindow(relay.DefaultWindow),
		notices:   newNoticeCache(10*time.Minute, 512, now),
		mode:      opts.Mode,
		self:      Identity{Name: opts.SelfName},
		inbound:   make(chan event.Raw, opts.InboundBuffer),
		refreshed: make(chan refreshResult, 1),
		snapshots: make(chan chan Snapshot),
		done:      make(chan struct{}),
	}
	if c.mode == ModeAuto {
		c.mode = ModeUnknown
	}
	c.commands, c.aliases = c.commandTable()
	return c
}

// Deliver queues one inbound control-plane message for the loop.
func (c *Conductor) Deliver(ctx context.Context, raw event.Raw) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}
	select {
	case c.inbound <- raw:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a consistent copy of the state, taken by the loop.
func (c *Conductor) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case c.snapshots <- reply:
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Run processes messages, ticks and discovery retries until ctx ends. It
// never returns because of a handler failure.
func (c *Conductor) Run(ctx context.Context) error {
	defer close(c.done)

	c.safely(ctx, "startup", c.start)

	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()
	discovery := time.NewTicker(c.opts.DiscoveryInterval)
	defer discovery.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "conductor stopping")
			return ctx.Err()
		case raw := <-c.inbound:
			c.safely(ctx, "message", func(ctx context.Context) { c.handleMessage(ctx, raw) })
		case <-ticker.C:
			c.safely(ctx, "tick", c.beginTick)
		case res := <-c.refreshed:
			c.safely(ctx, "tick", func(ctx context.Context) { c.completeTick(ctx, res) })
		case <-discovery.C:
			c.safely(ctx, "discovery", c.discover)
		case reply := <-c.snapshots:
			reply <- c.snapshot()
		}
	}
}

func (c *Conductor) start(ctx context.Context) {
	c.logger.InfoContext(ctx, "conductor starting", "mode", string(c.mode))
	c.send(ctx, AddressSubscribe, subscribeAll)
	c.send(ctx, AddressPing)
	c.send(ctx, AddressList)
	c.beginTick(ctx)
}

func (c *Conductor) safely(ctx context.Context, stage string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "recovered from panic",
				"stage", stage,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn(ctx)
}

func (c *Conductor) isPrimary() bool { return c.mode == ModePrimary }

func (c *Conductor) isSelf(id int) bool { return c.self.Known && c.self.ID == id }

func (c *Conductor) setMode(ctx context.Context, mode Mode) {
	if c.mode == mode {
		return
	}
	c.logger.InfoContext(ctx, "instance mode resolved", "mode", string(mode), "pro", c.pro)
	c.mode = mode
	switch mode {
	case ModeSecondary:
		// only relayed snapshots populate a secondary's roster, and only the
		// primary assigns its identity
		c.roster.Reset()
		c.self = Identity{Name: c.opts.SelfName}
		c.registered = false
		c.discover(ctx)
	case ModePrimary:
		c.send(ctx, AddressList)
	}
}

func (c *Conductor) snapshot() Snapshot {
	now := c.now()
	snap := Snapshot{
		TakenAt:      now,
		Mode:         c.mode,
		Pro:          c.pro,
		Identity:     c.self,
		State:        c.sched.State(now),
		Participants: c.roster.Participants(),
		Groups:       c.roster.ListAllGroups(),
		Meetings:     c.sched.Meetings(),
		Conflicts:    c.sched.Conflicts(),
	}
	if m, ok := c.sched.Current(); ok {
		snap.Current = &m
	}
	return snap
}
