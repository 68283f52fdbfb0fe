package testfixtures

import (
	"fmt"
	"sync"
)

// EnvelopeIDs hands out predictable relay envelope ids, "<instance>-<n>",
// so tests can tell which conductor minted an envelope.
type EnvelopeIDs struct {
	mu       sync.Mutex
	instance string
	issued   []string
}

// NewEnvelopeIDs names ids after instance, or "conductor" when it is empty.
func NewEnvelopeIDs(instance string) *EnvelopeIDs {
	if instance == "" {
		instance = "conductor"
	}
	return &EnvelopeIDs{instance: instance}
}

func (g *EnvelopeIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d", g.instance, len(g.issued)+1)
	g.issued = append(g.issued, id)
	return id
}

// NextFunc is handed to the conductor in place of the uuid generator.
func (g *EnvelopeIDs) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued lists every id minted so far, oldest first.
func (g *EnvelopeIDs) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
