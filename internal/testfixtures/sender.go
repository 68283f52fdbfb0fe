package testfixtures

import (
	"context"
	"slices"
	"sync"
)

// SentMessage is one control-plane message captured by RecordingSender.
type SentMessage struct {
	Address string
	Args    []any
}

// RecordingSender captures outbound control-plane messages in order. It is
// safe for concurrent use.
type RecordingSender struct {
	mu   sync.Mutex
	sent []SentMessage
	err  error
}

// NewRecordingSender returns an empty sender.
func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

// Send records the message and returns the configured failure, if any.
func (s *RecordingSender) Send(_ context.Context, address string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, SentMessage{Address: address, Args: slices.Clone(args)})
	return s.err
}

// FailWith makes subsequent sends return err after recording the message.
func (s *RecordingSender) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Messages returns a copy of everything sent so far.
func (s *RecordingSender) Messages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sent)
}

// To returns the messages sent to address.
func (s *RecordingSender) To(address string) []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SentMessage
	for _, m := range s.sent {
		if m.Address == address {
			out = append(out, m)
		}
	}
	return out
}

// Count returns how many messages were sent to address.
func (s *RecordingSender) Count(address string) int {
	return len(s.To(address))
}

// Reset forgets recorded messages.
func (s *RecordingSender) Reset() {
	s.mu.Lock()
	s.sent = nil
	s.mu.Unlock()
}
