package relay

import "sync"

// DefaultWindow is the number of envelope ids a receiver remembers.
const DefaultWindow = 256

// Window remembers the most recent envelope ids so a receiver can drop
// envelopes it has already applied.
type Window struct {
	mu    sync.Mutex
	size  int
	ring  []string
	next  int
	index map[string]struct{}
}

// NewWindow returns a Window holding up to size ids. A non-positive size
// falls back to DefaultWindow.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Window{
		size:  size,
		ring:  make([]string, 0, size),
		index: make(map[string]struct{}, size),
	}
}

// Remember records id and reports whether it was new. Empty ids are always
// treated as new and never stored.
func (w *Window) Remember(id string) bool {
	if id == "" {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, seen := w.index[id]; seen {
		return false
	}
	if len(w.ring) < w.size {
		w.ring = append(w.ring, id)
	} else {
		delete(w.index, w.ring[w.next])
		w.ring[w.next] = id
		w.next = (w.next + 1) % w.size
	}
	w.index[id] = struct{}{}
	return true
}

// Len returns the number of ids currently remembered.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.ring)
}
