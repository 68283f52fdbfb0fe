package scheduler

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/example/meeting-conductor/internal/recurrence"
)

// File is the declarative schedule as written on disk.
type File struct {
	Codeword string  `yaml:"codeword" json:"codeword"`
	Timezone string  `yaml:"timezone" json:"timezone"`
	Meetings []Entry `yaml:"meetings" json:"meetings"`
}

// Entry is one meeting in the schedule file. Durations are minutes.
type Entry struct {
	Name      string   `yaml:"name" json:"name"`
	MeetingID string   `yaml:"meeting_id" json:"meeting_id"`
	Password  string   `yaml:"password" json:"password"`
	Date      string   `yaml:"date" json:"date"`
	Days      []string `yaml:"days" json:"days"`
	Start     string   `yaml:"start" json:"start"`
	Duration  int      `yaml:"duration" json:"duration"`
	HardCap   int      `yaml:"hard_cap" json:"hard_cap"`
	Codeword  string   `yaml:"codeword" json:"codeword"`
	Exclude   bool     `yaml:"exclude" json:"exclude"`
	CoHosts   []string `yaml:"cohosts" json:"cohosts"`
}

// Parse decodes a schedule file. Paths ending in .yaml or .yml are read as
// YAML; anything else as JSON with comments and trailing commas allowed.
func Parse(path string, data []byte) (File, error) {
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("parsing schedule %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
			return File{}, fmt.Errorf("parsing schedule %s: %w", path, err)
		}
	}
	return f, nil
}

// Meeting is a schedule entry resolved to concrete instants.
type Meeting struct {
	Name      string    `json:"name"`
	MeetingID string    `json:"meeting_id"`
	Password  string    `json:"-"`
	Codeword  string    `json:"-"`
	Dated     bool      `json:"dated"`
	Exclude   bool      `json:"exclude"`
	CoHosts   []string  `json:"cohosts,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	HardEnd   time.Time `json:"hard_end"`
}

// Key identifies one occurrence of a meeting across schedule reloads.
func (m Meeting) Key() string {
	return m.Name + "@" + m.Start.UTC().Format(time.RFC3339)
}

// Schedule is the set of meetings derived from a File for a given day.
type Schedule struct {
	Codeword string
	Location *time.Location
	Day      time.Time
	Meetings []Meeting
}

const dateLayout = "2006-01-02"

// Build resolves f into concrete meetings around now. Undated entries are
// expanded for the previous and the current calendar day so a meeting
// running across midnight stays visible. Entries that cannot be resolved are
// skipped and reported in the returned problems. Conflicts are not resolved
// here; see Resolve.
func Build(f File, now time.Time, fallback *time.Location) (Schedule, []error) {
	var problems []error

	loc := fallback
	if loc == nil {
		loc = time.Local
	}
	if f.Timezone != "" {
		parsed, err := time.LoadLocation(f.Timezone)
		if err != nil {
			problems = append(problems, fmt.Errorf("timezone %q: %w", f.Timezone, err))
		} else {
			loc = parsed
		}
	}

	engine := recurrence.NewEngine(loc)
	today := recurrence.StartOfDay(now, loc)
	sched := Schedule{Codeword: f.Codeword, Location: loc, Day: today}

	for i, entry := range f.Meetings {
		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("meeting %d", i+1)
		}
		tod, err := recurrence.ParseTimeOfDay(entry.Start)
		if err != nil {
			problems = append(problems, fmt.Errorf("meeting %q: start: %w", name, err))
			continue
		}
		if entry.Duration <= 0 {
			problems = append(problems, fmt.Errorf("meeting %q: duration must be positive", name))
			continue
		}
		duration := time.Duration(entry.Duration) * time.Minute
		hardCap := time.Duration(entry.HardCap) * time.Minute
		if hardCap < duration {
			hardCap = duration
		}

		base := Meeting{
			Name:      name,
			MeetingID: entry.MeetingID,
			Password:  entry.Password,
			Codeword:  entry.Codeword,
			Exclude:   entry.Exclude,
			CoHosts:   slices.Clone(entry.CoHosts),
		}

		if entry.Date != "" {
			day, err := time.ParseInLocation(dateLayout, entry.Date, loc)
			if err != nil {
				problems = append(problems, fmt.Errorf("meeting %q: date: %w", name, err))
				continue
			}
			m := base
			m.Dated = true
			m.Start = recurrence.At(day, tod, loc)
			m.End = m.Start.Add(duration)
			m.HardEnd = m.Start.Add(hardCap)
			sched.Meetings = append(sched.Meetings, m)
			continue
		}

		weekdays := make([]time.Weekday, 0, len(entry.Days))
		var badDay error
		for _, d := range entry.Days {
			wd, err := recurrence.ParseWeekday(d)
			if err != nil {
				badDay = err
				break
			}
			weekdays = append(weekdays, wd)
		}
		if badDay != nil {
			problems = append(problems, fmt.Errorf("meeting %q: days: %w", name, badDay))
			continue
		}

		rule := recurrence.Rule{Key: name, Weekdays: weekdays, Start: tod, Duration: duration}
		occurrences, err := engine.Expand(rule, today.AddDate(0, 0, -1), today)
		if err != nil {
			problems = append(problems, fmt.Errorf("meeting %q: %w", name, err))
			continue
		}
		for _, occ := range occurrences {
			m := base
			m.CoHosts = slices.Clone(base.CoHosts)
			m.Start = occ.Start
			m.End = occ.End
			m.HardEnd = occ.Start.Add(hardCap)
			sched.Meetings = append(sched.Meetings, m)
		}
	}

	slices.SortStableFunc(sched.Meetings, func(a, b Meeting) int {
		return a.Start.Compare(b.Start)
	})
	return sched, problems
}

// Select returns the current meeting at now: among meetings whose
// [Start, End] interval contains now (both ends inclusive), the one with the
// earliest start, preferring a dated meeting on a tie.
func Select(meetings []Meeting, now time.Time) (Meeting, bool) {
	var best Meeting
	found := false
	for _, m := range meetings {
		if now.Before(m.Start) || now.After(m.End) {
			continue
		}
		if !found || m.Start.Before(best.Start) || (m.Start.Equal(best.Start) && m.Dated && !best.Dated) {
			best = m
			found = true
		}
	}
	return best, found
}
