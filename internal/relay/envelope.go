// Package relay encodes and decodes the envelopes instances exchange over
// the chat channel.
//
// An envelope is a single chat line: the Prefix verb followed by compact
// JSON. The primary uses envelopes to mirror roster snapshots to secondary
// instances, to answer identity discovery and to ask a secondary to run a
// control-plane command locally. Nothing outside this package builds or
// slices envelope text.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/example/meeting-conductor/internal/chat"
	"github.com/example/meeting-conductor/internal/event"
)

// Prefix is the chat verb that introduces an envelope.
const Prefix = "/xlocal"

// Commands understood inside an envelope besides plain control-plane
// addresses.
const (
	// CommandEvent carries a roster event for the receiver to apply.
	CommandEvent = "event"
	// CommandYouAre tells the receiver its own session id and name.
	CommandYouAre = "/youare"
)

var (
	// ErrNotEnvelope is returned when a line does not start with Prefix.
	ErrNotEnvelope = errors.New("relay: not an envelope")
	// ErrMalformed is returned when the envelope payload cannot be decoded.
	ErrMalformed = errors.New("relay: malformed envelope")
)

// Envelope is one relayed instruction addressed to a single session.
type Envelope struct {
	ID      string     `json:"id"`
	Target  int        `json:"target"`
	Command string     `json:"cmd"`
	Args    []any      `json:"args,omitempty"`
	Event   *event.Raw `json:"event,omitempty"`
}

// IsEnvelope reports whether a chat line is an envelope. It must be called
// on the line as received, before any quote normalization.
func IsEnvelope(line string) bool {
	if !strings.HasPrefix(line, Prefix) {
		return false
	}
	rest := line[len(Prefix):]
	return rest == "" || unicode.IsSpace(rune(rest[0]))
}

// Encode renders env as a chat line. An empty ID is filled with a random
// UUID.
func Encode(env Envelope) (string, error) {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("relay: encode %s: %w", env.Command, err)
	}
	return Prefix + " " + string(payload), nil
}

// Decode parses a chat line produced by Encode. Numeric arguments come back
// as int32 when integral so they can be forwarded to the control plane
// unchanged.
func Decode(line string) (Envelope, error) {
	if !IsEnvelope(line) {
		return Envelope{}, ErrNotEnvelope
	}
	payload := strings.TrimSpace(line[len(Prefix):])
	if payload == "" {
		return Envelope{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		// chat clients sometimes restyle quotes in transit
		if retryErr := json.Unmarshal([]byte(chat.Normalize(payload)), &env); retryErr != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if env.Command == "" {
		return Envelope{}, fmt.Errorf("%w: missing cmd", ErrMalformed)
	}
	if env.Command == CommandEvent && env.Event == nil {
		return Envelope{}, fmt.Errorf("%w: event command without event", ErrMalformed)
	}

	env.Args = NormalizeArgs(env.Args)
	if env.Event != nil {
		env.Event.Args = NormalizeArgs(env.Event.Args)
	}
	return env, nil
}

// NormalizeArgs converts JSON numbers back to the integer type the control
// plane uses. Fractional numbers stay float64 and other values are kept.
func NormalizeArgs(args []any) []any {
	if args == nil {
		return nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		f, ok := arg.(float64)
		if ok && f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
			out[i] = int32(f)
			continue
		}
		out[i] = arg
	}
	return out
}
