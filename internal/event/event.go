// Package event turns raw control-plane messages into typed events.
//
// Each inbound message is a path-like address plus a positional argument
// list. Parse inspects the address and produces one concrete event type per
// kind, carrying only the fields that kind defines. Numeric coercion never
// fails loudly: a value that cannot be read as a number becomes Unset and a
// boolean that cannot be read becomes false. Callers check before use.
package event

import "math"

// Unset marks a numeric field whose wire value could not be coerced.
const Unset = math.MinInt32

// Kind identifies the shape of an event.
type Kind string

const (
	KindChat    Kind = "chat"
	KindAudio   Kind = "audio"
	KindVideo   Kind = "video"
	KindRole    Kind = "role"
	KindRename  Kind = "rename"
	KindOnline  Kind = "online"
	KindOffline Kind = "offline"
	KindList    Kind = "list"
	KindPong    Kind = "pong"
	KindUnknown Kind = "unknown"
)

// Raw is a control-plane message as it arrives on the wire.
type Raw struct {
	Address string `json:"address"`
	Args    []any  `json:"args"`
}

// Event is implemented by every parsed event kind.
type Event interface {
	Kind() Kind
	Source() Raw
}

// Header carries the fields shared by all participant-addressed events.
type Header struct {
	Raw          Raw
	Self         bool
	TargetIndex  int
	Name         string
	GalleryIndex int
	ID           int
}

// Source returns the message the event was parsed from.
func (h Header) Source() Raw { return h.Raw }

// HasID reports whether the participant id was readable.
func (h Header) HasID() bool { return h.ID != Unset }

// Chat is a chat message sent by a participant.
type Chat struct {
	Header
	Text string
}

func (Chat) Kind() Kind { return KindChat }

// Audio reports a participant muting or unmuting.
type Audio struct {
	Header
	On bool
}

func (Audio) Kind() Kind { return KindAudio }

// Video reports a participant starting or stopping video.
type Video struct {
	Header
	On bool
}

func (Video) Kind() Kind { return KindVideo }

// Role reports a participant role change.
type Role struct {
	Header
	Role int
}

func (Role) Kind() Kind { return KindRole }

// Rename reports a display name change. Header.Name holds the new name.
type Rename struct {
	Header
}

func (Rename) Kind() Kind { return KindRename }

// Online reports a participant joining.
type Online struct {
	Header
}

func (Online) Kind() Kind { return KindOnline }

// Offline reports a participant leaving.
type Offline struct {
	Header
}

func (Offline) Kind() Kind { return KindOffline }

// List is one row of a roster snapshot.
type List struct {
	Header
	TargetCount int
	ListIndex   int
	Role        int
	Online      bool
	Video       bool
	Audio       bool
	HandRaised  bool
}

func (List) Kind() Kind { return KindList }

// Pong answers a ping and describes the control-plane capabilities.
type Pong struct {
	Raw           Raw
	PingArg       any
	Version       string
	SubscribeMode int
	GalleryMode   int
	InCall        bool
	TargetCount   int
	UserCount     int
	Pro           bool
}

func (Pong) Kind() Kind    { return KindPong }
func (p Pong) Source() Raw { return p.Raw }

// Unknown wraps a message whose address is not recognised.
type Unknown struct {
	Raw Raw
}

func (Unknown) Kind() Kind    { return KindUnknown }
func (u Unknown) Source() Raw { return u.Raw }
