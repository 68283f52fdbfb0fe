package roster

import (
	"maps"
	"slices"
)

// SkipID marks a deliberately empty slot in a group. It keeps positional
// alignment with a paired group.
const SkipID = -1

// DefineGroup creates or replaces the group name with ids.
func (s *Store) DefineGroup(name string, ids []int) {
	s.groups[name] = slices.Clone(ids)
}

// AppendToGroup extends the group name with ids, creating it when absent.
// An id already in the group is not added again. SkipID may be appended more
// than once within a call to keep slots aligned, but never when the group
// already holds a skipped slot from an earlier call. It returns the ids that
// were added.
func (s *Store) AppendToGroup(name string, ids []int) []int {
	current := s.groups[name]
	before := make(map[int]struct{}, len(current))
	for _, id := range current {
		before[id] = struct{}{}
	}

	var added []int
	for _, id := range ids {
		if _, dup := before[id]; dup {
			continue
		}
		if id != SkipID && slices.Contains(added, id) {
			continue
		}
		added = append(added, id)
	}

	s.groups[name] = append(slices.Clone(current), added...)
	return added
}

// DeleteGroup removes the group name. It reports whether the group existed.
func (s *Store) DeleteGroup(name string) bool {
	if _, ok := s.groups[name]; !ok {
		return false
	}
	delete(s.groups, name)
	return true
}

// ClearAllGroups removes every group and returns how many were removed.
func (s *Store) ClearAllGroups() int {
	n := len(s.groups)
	clear(s.groups)
	return n
}

// ListGroup returns a copy of the ids in group name.
func (s *Store) ListGroup(name string) ([]int, bool) {
	ids, ok := s.groups[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(ids), true
}

// ListAllGroups returns a copy of every group keyed by name.
func (s *Store) ListAllGroups() map[string][]int {
	out := make(map[string][]int, len(s.groups))
	for name, ids := range s.groups {
		out[name] = slices.Clone(ids)
	}
	return out
}

// GroupNames returns the group names in lexical order.
func (s *Store) GroupNames() []string {
	return slices.Sorted(maps.Keys(s.groups))
}

// InAnyGroup reports whether id is a member of at least one group.
func (s *Store) InAnyGroup(id int) bool {
	for _, ids := range s.groups {
		if slices.Contains(ids, id) {
			return true
		}
	}
	return false
}

// InGroup reports whether id is a member of group name.
func (s *Store) InGroup(name string, id int) bool {
	return slices.Contains(s.groups[name], id)
}
