// Package scheduler decides when meetings start, get warned about and end.
//
// A Scheduler is a pure state machine: the caller feeds it schedule files
// and clock ticks and executes the actions it returns. It never talks to the
// control plane itself and is owned by a single event loop.
package scheduler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/example/meeting-conductor/internal/recurrence"
)

// DefaultWarnWindow is how long before the hard-cap end warnings start.
const DefaultWarnWindow = 5 * time.Minute

var (
	// ErrNoCurrentMeeting is returned when an operation needs a current meeting.
	ErrNoCurrentMeeting = errors.New("scheduler: no current meeting")
	// ErrInvalidExtension is returned for non-positive extensions.
	ErrInvalidExtension = errors.New("scheduler: extension must be positive")
)

// State describes where the current meeting is in its lifecycle.
type State string

const (
	StateIdle    State = "no_current_meeting"
	StatePending State = "pending_end"
	StateWarning State = "warning_window"
)

// ActionKind identifies what the caller must do.
type ActionKind string

const (
	// ActionStart asks the caller to join or start the meeting.
	ActionStart ActionKind = "start"
	// ActionWarn asks the caller to warn privileged participants that the
	// meeting ends at HardEnd.
	ActionWarn ActionKind = "warn"
	// ActionEnd asks the caller to end or leave the meeting.
	ActionEnd ActionKind = "end"
)

// Action is one decision produced by Tick.
type Action struct {
	Kind    ActionKind
	Meeting Meeting
	HardEnd time.Time
}

// Options configures a Scheduler.
type Options struct {
	Location   *time.Location
	WarnWindow time.Duration
	Logger     *slog.Logger
}

// Scheduler tracks the loaded schedule and the current meeting.
type Scheduler struct {
	location   *time.Location
	warnWindow time.Duration
	logger     *slog.Logger

	file      *File
	schedule  Schedule
	conflicts []Conflict

	current    *Meeting
	startedKey string
	extension  time.Duration
	latched    bool
	done       map[string]struct{}
}

// New constructs a Scheduler with no schedule loaded.
func New(opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.WarnWindow <= 0 {
		opts.WarnWindow = DefaultWarnWindow
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scheduler{
		location:   opts.Location,
		warnWindow: opts.WarnWindow,
		logger:     opts.Logger,
		done:       make(map[string]struct{}),
	}
}

// Load replaces the schedule. The current meeting pointer is cleared; when
// the meeting that was started is still present under the same name and
// start it is adopted again without a new start action.
func (s *Scheduler) Load(f File, now time.Time) {
	s.file = &f
	s.rebuild(now)

	previous := s.current
	s.current = nil
	s.latched = false
	if s.startedKey == "" {
		return
	}
	for _, m := range s.schedule.Meetings {
		if m.Key() != s.startedKey {
			continue
		}
		if now.After(m.HardEnd.Add(s.extension)) {
			break
		}
		adopted := m
		s.current = &adopted
		s.latched = !now.After(m.End)
		s.logger.Info("current meeting re-adopted after reload", "meeting", m.Name, "start", m.Start)
		return
	}
	if previous != nil {
		s.logger.Warn("current meeting no longer scheduled after reload", "meeting", previous.Name, "start", previous.Start)
	}
	s.startedKey = ""
	s.extension = 0
}

// Loaded reports whether a schedule file has been loaded.
func (s *Scheduler) Loaded() bool { return s.file != nil }

// Tick advances the state machine to now and returns the actions to take,
// in order.
func (s *Scheduler) Tick(now time.Time) []Action {
	if s.file != nil && !recurrence.StartOfDay(now, s.schedule.Location).Equal(s.schedule.Day) {
		s.logger.Info("calendar day changed, re-deriving meetings")
		s.rebuild(now)
		s.pruneDone()
	}

	var actions []Action
	if s.current != nil {
		hardEnd := s.current.HardEnd.Add(s.extension)
		switch {
		case now.After(hardEnd):
			ended := *s.current
			ended.HardEnd = hardEnd
			if ended.Exclude {
				s.logger.Info("excluded meeting window closed", "meeting", ended.Name, "hard_end", hardEnd)
			} else {
				actions = append(actions, Action{Kind: ActionEnd, Meeting: ended, HardEnd: hardEnd})
				s.logger.Info("meeting reached hard cap", "meeting", ended.Name, "hard_end", hardEnd)
			}
			s.finish()
		default:
			if s.latched && now.After(s.current.End) {
				s.latched = false
				s.logger.Debug("meeting passed nominal end, start latch released", "meeting", s.current.Name)
			}
			if !s.current.Exclude && !now.Before(hardEnd.Add(-s.warnWindow)) {
				warned := *s.current
				warned.HardEnd = hardEnd
				actions = append(actions, Action{Kind: ActionWarn, Meeting: warned, HardEnd: hardEnd})
			}
		}
	}

	if s.latched {
		return actions
	}
	candidate, ok := Select(s.eligible(), now)
	if !ok {
		return actions
	}
	if s.current != nil && candidate.Key() == s.current.Key() {
		return actions
	}
	if s.current != nil {
		s.logger.Info("next meeting supersedes current meeting", "meeting", candidate.Name, "previous", s.current.Name)
	}

	started := candidate
	s.current = &started
	s.startedKey = candidate.Key()
	s.extension = 0
	s.latched = true
	if candidate.Exclude {
		// current for its codeword and co-hosts, but never joined or ended
		s.logger.Info("excluded meeting selected, not starting", "meeting", candidate.Name, "start", candidate.Start, "end", candidate.End)
		return actions
	}
	actions = append(actions, Action{Kind: ActionStart, Meeting: candidate, HardEnd: candidate.HardEnd})
	s.logger.Info("meeting selected", "meeting", candidate.Name, "start", candidate.Start, "end", candidate.End, "hard_end", candidate.HardEnd)
	return actions
}

// Current returns the current meeting with any extension applied to
// HardEnd.
func (s *Scheduler) Current() (Meeting, bool) {
	if s.current == nil {
		return Meeting{}, false
	}
	m := *s.current
	m.HardEnd = m.HardEnd.Add(s.extension)
	return m, true
}

// State reports the lifecycle state of the current meeting at now.
func (s *Scheduler) State(now time.Time) State {
	m, ok := s.Current()
	if !ok {
		return StateIdle
	}
	if !now.Before(m.HardEnd.Add(-s.warnWindow)) {
		return StateWarning
	}
	return StatePending
}

// Extend pushes the hard-cap end of the current meeting forward by d and
// returns the updated meeting.
func (s *Scheduler) Extend(d time.Duration) (Meeting, error) {
	if s.current == nil {
		return Meeting{}, ErrNoCurrentMeeting
	}
	if d <= 0 {
		return Meeting{}, ErrInvalidExtension
	}
	s.extension += d
	m, _ := s.Current()
	s.logger.Info("meeting extended", "meeting", m.Name, "by", d, "hard_end", m.HardEnd)
	return m, nil
}

// EndNow ends the current meeting immediately and returns it. The meeting is
// not selected again while its window stays open.
func (s *Scheduler) EndNow() (Meeting, error) {
	m, ok := s.Current()
	if !ok {
		return Meeting{}, ErrNoCurrentMeeting
	}
	s.finish()
	s.logger.Info("meeting ended on request", "meeting", m.Name)
	return m, nil
}

// Codeword returns the codeword gating meeting-control commands: the current
// meeting's own codeword, else the schedule-wide default. An empty result
// means no codeword is configured.
func (s *Scheduler) Codeword() string {
	if s.current != nil && s.current.Codeword != "" {
		return s.current.Codeword
	}
	return s.DefaultCodeword()
}

// DefaultCodeword returns the schedule-wide codeword.
func (s *Scheduler) DefaultCodeword() string {
	if s.file == nil {
		return ""
	}
	return s.file.Codeword
}

// Meetings returns the meetings of the resolved schedule.
func (s *Scheduler) Meetings() []Meeting {
	out := make([]Meeting, len(s.schedule.Meetings))
	copy(out, s.schedule.Meetings)
	return out
}

// Conflicts returns the conflicts found by the last resolution.
func (s *Scheduler) Conflicts() []Conflict {
	out := make([]Conflict, len(s.conflicts))
	copy(out, s.conflicts)
	return out
}

func (s *Scheduler) rebuild(now time.Time) {
	sched, problems := Build(*s.file, now, s.location)
	for _, err := range problems {
		s.logger.Warn("schedule entry skipped", "error", err)
	}

	kept, conflicts := Resolve(sched.Meetings)
	for _, c := range conflicts {
		switch c.Type {
		case ConflictTypeSuperseded:
			s.logger.Warn("undated meeting dropped in favour of dated meeting",
				"dropped", c.Other.Name, "dropped_start", c.Other.Start,
				"kept", c.Kept.Name, "kept_start", c.Kept.Start)
		default:
			s.logger.Warn("overlapping meetings",
				"meeting", c.Kept.Name, "start", c.Kept.Start,
				"other", c.Other.Name, "other_start", c.Other.Start)
		}
	}
	sched.Meetings = kept
	s.schedule = sched
	s.conflicts = conflicts
}

func (s *Scheduler) eligible() []Meeting {
	out := make([]Meeting, 0, len(s.schedule.Meetings))
	for _, m := range s.schedule.Meetings {
		if _, finished := s.done[m.Key()]; finished {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *Scheduler) finish() {
	if s.current != nil {
		s.done[s.current.Key()] = struct{}{}
	}
	s.current = nil
	s.startedKey = ""
	s.extension = 0
	s.latched = false
}

func (s *Scheduler) pruneDone() {
	present := make(map[string]struct{}, len(s.schedule.Meetings))
	for _, m := range s.schedule.Meetings {
		present[m.Key()] = struct{}{}
	}
	for key := range s.done {
		if _, ok := present[key]; !ok {
			delete(s.done, key)
		}
	}
}
