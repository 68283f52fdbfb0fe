package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/meeting-conductor/internal/roster"
	"github.com/example/meeting-conductor/internal/scheduler"
)

// Reserved group names.
const (
	// GroupDevices lists the session ids of registered secondary instances.
	GroupDevices = "devices"
	// GroupSupport lists the devices that display pins, in slot order.
	GroupSupport = "ls-support"
	// DefaultMuteGroup is used by /mx and /ux when no group is named.
	DefaultMuteGroup = "leaders"
)

// Mode is the role this instance plays in a deployment.
type Mode string

const (
	// ModeAuto is only valid in configuration: the mode is discovered from
	// the control plane's capabilities.
	ModeAuto      Mode = "auto"
	ModeUnknown   Mode = "unknown"
	ModePrimary   Mode = "primary"
	ModeSecondary Mode = "secondary"
)

// ParseMode converts a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModePrimary:
		return ModePrimary, nil
	case ModeSecondary:
		return ModeSecondary, nil
	default:
		return "", fmt.Errorf("application: unknown mode %q", s)
	}
}

// Identity is this instance's own session in the meeting.
type Identity struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Known bool   `json:"known"`
}

// Snapshot is a consistent copy of the conductor state taken inside the
// event loop.
type Snapshot struct {
	TakenAt      time.Time            `json:"taken_at"`
	Mode         Mode                 `json:"mode"`
	Pro          bool                 `json:"pro"`
	Identity     Identity             `json:"identity"`
	State        scheduler.State      `json:"scheduler_state"`
	Current      *scheduler.Meeting   `json:"current_meeting,omitempty"`
	Participants []roster.Participant `json:"participants"`
	Groups       map[string][]int     `json:"groups"`
	Meetings     []scheduler.Meeting  `json:"meetings"`
	Conflicts    []scheduler.Conflict `json:"conflicts,omitempty"`
}
