// Package roster keeps the in-memory model of who is in the session: the
// participant table, the display name index and the named groups.
//
// A Store is owned by a single event loop and is not safe for concurrent
// use. Every operation leaves the participant table and the name index
// consistent before it returns.
package roster

import (
	"cmp"
	"slices"

	"github.com/example/meeting-conductor/internal/event"
)

// Participant roles as reported by the control plane.
const (
	RoleNone   = 0
	RoleHost   = 1
	RoleCoHost = 2
)

// Participant is one attendee or device in the session.
type Participant struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Role   int    `json:"role"`
	Audio  bool   `json:"audio"`
	Video  bool   `json:"video"`
	Online bool   `json:"online"`
	Seen   bool   `json:"seen"`

	missed int
}

// Privileged reports whether the participant is a host or co-host.
func (p Participant) Privileged() bool {
	return p.Role == RoleHost || p.Role == RoleCoHost
}

// Entry is one authoritative roster snapshot row.
type Entry struct {
	ID     int
	Name   string
	Role   int
	Online bool
	Audio  bool
	Video  bool
}

// EntryFromList converts a parsed snapshot row into an Entry.
func EntryFromList(ev event.List) Entry {
	return Entry{
		ID:     ev.ID,
		Name:   ev.Name,
		Role:   ev.Role,
		Online: ev.Online,
		Audio:  ev.Audio,
		Video:  ev.Video,
	}
}

// Field names a narrow participant mutation.
type Field int

const (
	FieldRole Field = iota
	FieldAudio
	FieldVideo
)

// Privilege is the three-state answer of IsPrivileged.
type Privilege int

const (
	PrivilegeUnknown Privilege = iota
	PrivilegeNone
	PrivilegeGranted
)

func (p Privilege) String() string {
	switch p {
	case PrivilegeNone:
		return "unprivileged"
	case PrivilegeGranted:
		return "privileged"
	default:
		return "unknown"
	}
}

// Store holds participants, the name index and groups.
type Store struct {
	participants map[int]*Participant
	names        map[string][]int
	groups       map[string][]int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		participants: make(map[int]*Participant),
		names:        make(map[string][]int),
		groups:       make(map[string][]int),
	}
}

// UpsertFromSnapshot applies one snapshot row. A row reporting the
// participant offline removes it. It returns true when the participant was
// removed.
func (s *Store) UpsertFromSnapshot(e Entry) bool {
	if !e.Online {
		return s.Remove(e.ID)
	}

	p, ok := s.participants[e.ID]
	if !ok {
		p = &Participant{ID: e.ID, Name: e.Name}
		s.participants[e.ID] = p
		s.indexName(e.Name, e.ID)
	} else if p.Name != e.Name {
		s.unindexName(p.Name, e.ID)
		s.indexName(e.Name, e.ID)
		p.Name = e.Name
	}

	p.Role = e.Role
	p.Audio = e.Audio
	p.Video = e.Video
	p.Online = true
	p.markSeen()
	return false
}

// Online records a participant joining. It returns true when a new
// participant was created; known participants are only marked seen.
func (s *Store) Online(id int, name string) bool {
	if p, ok := s.participants[id]; ok {
		p.Online = true
		p.markSeen()
		return false
	}
	p := &Participant{ID: id, Name: name, Role: RoleNone, Online: true}
	p.markSeen()
	s.participants[id] = p
	s.indexName(name, id)
	return true
}

// RecordEvent applies a narrow mutation to a known participant. Unknown ids
// are ignored and reported as false. Audio and video treat any non-zero
// value as on.
func (s *Store) RecordEvent(field Field, id int, value int) bool {
	p, ok := s.participants[id]
	if !ok {
		return false
	}
	switch field {
	case FieldRole:
		p.Role = value
	case FieldAudio:
		p.Audio = value != 0
	case FieldVideo:
		p.Video = value != 0
	default:
		return false
	}
	return true
}

// Rename moves a known participant to a new display name.
func (s *Store) Rename(id int, name string) bool {
	p, ok := s.participants[id]
	if !ok {
		return false
	}
	if p.Name == name {
		return true
	}
	s.unindexName(p.Name, id)
	s.indexName(name, id)
	p.Name = name
	return true
}

// Remove deletes a participant and its name index membership. Group
// membership is left alone; groups refer to ids, not participants.
func (s *Store) Remove(id int) bool {
	p, ok := s.participants[id]
	if !ok {
		return false
	}
	s.unindexName(p.Name, id)
	delete(s.participants, id)
	return true
}

// Get returns a copy of the participant with the given id.
func (s *Store) Get(id int) (Participant, bool) {
	p, ok := s.participants[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// LookupByName returns every participant currently holding name. The
// boolean is false when nobody holds the name.
func (s *Store) LookupByName(name string) ([]Participant, bool) {
	ids, ok := s.names[name]
	if !ok {
		return nil, false
	}
	out := make([]Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.participants[id])
	}
	return out, true
}

// IDsByName is LookupByName returning ids only.
func (s *Store) IDsByName(name string) ([]int, bool) {
	ids, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(ids), true
}

// IsPrivileged reports the privilege of id. Unknown ids yield
// PrivilegeUnknown, which callers must treat as not privileged.
func (s *Store) IsPrivileged(id int) Privilege {
	p, ok := s.participants[id]
	if !ok {
		return PrivilegeUnknown
	}
	if p.Privileged() {
		return PrivilegeGranted
	}
	return PrivilegeNone
}

// Participants returns copies of all participants ordered by id.
func (s *Store) Participants() []Participant {
	out := make([]Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Participant) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// PrivilegedIDs returns the ids of hosts and co-hosts in ascending order.
func (s *Store) PrivilegedIDs() []int {
	var ids []int
	for id, p := range s.participants {
		if p.Privileged() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of participants.
func (s *Store) Len() int { return len(s.participants) }

// Reset drops all participants, names and groups.
func (s *Store) Reset() {
	clear(s.participants)
	clear(s.names)
	clear(s.groups)
}

func (s *Store) indexName(name string, id int) {
	ids := s.names[name]
	if slices.Contains(ids, id) {
		return
	}
	s.names[name] = append(ids, id)
}

func (s *Store) unindexName(name string, id int) {
	ids, ok := s.names[name]
	if !ok {
		return
	}
	ids = slices.DeleteFunc(ids, func(v int) bool { return v == id })
	if len(ids) == 0 {
		delete(s.names, name)
		return
	}
	s.names[name] = ids
}

func (p *Participant) markSeen() {
	p.Seen = true
	p.missed = 0
}
