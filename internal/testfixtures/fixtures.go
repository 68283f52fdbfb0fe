package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/meeting-conductor/internal/event"
	"github.com/example/meeting-conductor/internal/roster"
)

var participantCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ParticipantFixture describes a deterministic session participant that can
// be rendered as the raw control-plane messages reporting it.
type ParticipantFixture struct {
	ID     int
	Name   string
	Role   int
	Online bool
	Audio  bool
	Video  bool
	// Self renders events on the "me" addresses.
	Self bool
}

// ParticipantOption configures the generated participant fixture.
type ParticipantOption func(*ParticipantFixture)

// NewParticipantFixture returns an online, unprivileged participant with a
// generated id and name.
func NewParticipantFixture(opts ...ParticipantOption) ParticipantFixture {
	idx := atomic.AddUint64(&participantCounter, 1)
	fixture := ParticipantFixture{
		ID:     int(1000 + idx),
		Name:   fmt.Sprintf("Participant %03d", idx),
		Role:   roster.RoleNone,
		Online: true,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithParticipantID overrides the generated session id.
func WithParticipantID(id int) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.ID = id
	}
}

// WithParticipantName overrides the generated display name.
func WithParticipantName(name string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Name = name
	}
}

// AsHost marks the participant as the meeting host.
func AsHost() ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Role = roster.RoleHost
	}
}

// AsCoHost marks the participant as a co-host.
func AsCoHost() ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Role = roster.RoleCoHost
	}
}

// WithMedia sets the audio and video state.
func WithMedia(audio, video bool) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Audio = audio
		f.Video = video
	}
}

// AsSelf renders the participant's events on the "me" addresses.
func AsSelf() ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Self = true
	}
}

// Offline marks the participant as having left.
func Offline() ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Online = false
	}
}

// ListRow renders the participant as one roster snapshot row.
func (f ParticipantFixture) ListRow() event.Raw {
	return f.Event("list",
		int32(1), int32(0), int32(f.Role),
		wireBool(f.Online), wireBool(f.Video), wireBool(f.Audio), int32(0),
	)
}

// Chat renders a chat message sent by the participant.
func (f ParticipantFixture) Chat(text string) event.Raw {
	return f.Event("chat", text)
}

// Event renders a participant event with the standard four-value header.
func (f ParticipantFixture) Event(verb string, params ...any) event.Raw {
	args := []any{int32(0), f.Name, int32(0), int32(f.ID)}
	return event.Raw{
		Address: event.UserAddress(verb, f.Self),
		Args:    append(args, params...),
	}
}

// Pong renders the control plane's answer to a ping.
func Pong(pro bool, users int) event.Raw {
	return event.Raw{
		Address: event.AddressPong,
		Args: []any{
			int32(0), "4.1.0", int32(2), int32(0), int32(1),
			int32(users), int32(users), wireBool(pro),
		},
	}
}

func wireBool(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
