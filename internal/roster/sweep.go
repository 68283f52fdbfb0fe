package roster

import "slices"

// SweepResult lists what a staleness sweep did.
type SweepResult struct {
	// Deleted holds unseen participants that were removed.
	Deleted []int
	// Retained holds unseen participants kept because a group refers to them.
	Retained []int
}

// SweepStale removes participants that have not been seen for threshold
// consecutive sweeps and belong to no group. Grouped participants are never
// removed; they are reported in Retained instead. Every seen flag is cleared
// afterwards so the next snapshot cycle can mark freshness again. A
// threshold below one is treated as one.
func (s *Store) SweepStale(threshold int) SweepResult {
	if threshold < 1 {
		threshold = 1
	}

	var res SweepResult
	for id, p := range s.participants {
		if p.Seen {
			p.Seen = false
			continue
		}
		p.missed++
		if p.missed < threshold {
			continue
		}
		if s.InAnyGroup(id) {
			res.Retained = append(res.Retained, id)
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}

	for _, id := range res.Deleted {
		s.Remove(id)
	}
	slices.Sort(res.Deleted)
	slices.Sort(res.Retained)
	return res
}
