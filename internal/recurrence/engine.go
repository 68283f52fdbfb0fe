package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock start time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Rule describes a meeting that repeats every day, optionally only on the
// listed weekdays.
type Rule struct {
	Key      string
	Weekdays []time.Weekday
	Start    TimeOfDay
	Duration time.Duration
}

// Occurrence is one concrete instance of a rule.
type Occurrence struct {
	Key   string
	Day   time.Time
	Start time.Time
	End   time.Time
}

// Engine expands recurrence rules into occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that interprets wall-clock times in loc.
// If loc is nil, time.Local is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{location: loc}
}

// Location returns the zone the engine expands rules in.
func (e *Engine) Location() *time.Location { return e.location }

// ErrInvalidWindow indicates the expansion window ends before it starts.
var ErrInvalidWindow = errors.New("recurrence: window end precedes start")

// ErrInvalidDuration indicates the rule duration is invalid.
var ErrInvalidDuration = errors.New("recurrence: duration must be positive")

// ErrInvalidTime indicates a malformed time of day.
var ErrInvalidTime = errors.New("recurrence: invalid time of day")

// ErrInvalidWeekday indicates an unrecognised weekday name.
var ErrInvalidWeekday = errors.New("recurrence: invalid weekday")

// Expand produces one occurrence per calendar day from the day of from to
// the day of to, both inclusive.
//
// The engine enforces the following semantics:
//   - Days are stepped by calendar date, so occurrences keep their wall-clock
//     start across daylight saving changes.
//   - A rule without weekdays applies every day; otherwise only the listed
//     weekdays produce occurrences.
//   - Occurrences are returned in chronological order.
func (e *Engine) Expand(rule Rule, from, to time.Time) ([]Occurrence, error) {
	if rule.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if err := rule.Start.validate(); err != nil {
		return nil, err
	}

	first := StartOfDay(from, e.location)
	last := StartOfDay(to, e.location)
	if last.Before(first) {
		return nil, ErrInvalidWindow
	}

	weekdaySet := make(map[time.Weekday]struct{}, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		weekdaySet[day] = struct{}{}
	}

	occurrences := make([]Occurrence, 0)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if len(weekdaySet) > 0 {
			if _, ok := weekdaySet[day.Weekday()]; !ok {
				continue
			}
		}
		start := At(day, rule.Start, e.location)
		occurrences = append(occurrences, Occurrence{
			Key:   rule.Key,
			Day:   day,
			Start: start,
			End:   start.Add(rule.Duration),
		})
	}
	return occurrences, nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// At combines the calendar day of day with a wall-clock time in loc.
func At(day time.Time, tod TimeOfDay, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, loc)
}

// ParseTimeOfDay reads "HH:MM" (a single-digit hour is accepted).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	tod := TimeOfDay{Hour: hour, Minute: minute}
	if err := tod.validate(); err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return tod, nil
}

// ParseWeekday reads a weekday name or its three-letter abbreviation,
// case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

func (t TimeOfDay) validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return ErrInvalidTime
	}
	return nil
}
