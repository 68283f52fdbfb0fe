package scheduler

// ConflictType describes how an overlap between two meetings was resolved.
type ConflictType string

const (
	// ConflictTypeSuperseded indicates an undated meeting was dropped because
	// a dated meeting covers the same time.
	ConflictTypeSuperseded ConflictType = "superseded"
	// ConflictTypeOverlap indicates two meetings of equal priority overlap.
	// Both are kept.
	ConflictTypeOverlap ConflictType = "overlap"
)

// Conflict details an overlapping pair that callers can log.
type Conflict struct {
	Type ConflictType `json:"type"`
	// Kept is the meeting that survives resolution.
	Kept Meeting `json:"kept"`
	// Other is the dropped meeting for ConflictTypeSuperseded, or the second
	// kept meeting for ConflictTypeOverlap.
	Other Meeting `json:"other"`
}

// Overlaps reports whether the nominal intervals of a and b overlap.
// Touching endpoints do not count.
func Overlaps(a, b Meeting) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Resolve applies the overlap policy to meetings. A dated meeting always
// wins over an undated meeting it overlaps; the undated one is dropped.
// Overlapping meetings of equal priority are all kept and reported pairwise.
// The order of meetings is preserved.
func Resolve(meetings []Meeting) ([]Meeting, []Conflict) {
	var conflicts []Conflict

	kept := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m.Dated {
			kept = append(kept, m)
			continue
		}
		dropped := false
		for _, d := range meetings {
			if d.Dated && Overlaps(d, m) {
				conflicts = append(conflicts, Conflict{Type: ConflictTypeSuperseded, Kept: d, Other: m})
				dropped = true
				break
			}
		}
		if !dropped {
			kept = append(kept, m)
		}
	}

	for i := 0; i < len(kept); i++ {
		for j := i + 1; j < len(kept); j++ {
			if kept[i].Dated == kept[j].Dated && Overlaps(kept[i], kept[j]) {
				conflicts = append(conflicts, Conflict{Type: ConflictTypeOverlap, Kept: kept[i], Other: kept[j]})
			}
		}
	}
	return kept, conflicts
}
