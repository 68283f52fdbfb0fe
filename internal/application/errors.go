package application

import (
	"errors"
	"fmt"

	"github.com/example/meeting-conductor/internal/scheduler"
)

var (
	// ErrUnauthorized is returned when the sender is not a host or co-host.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when a named participant or group does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrUnimplemented is returned for verbs missing from the command table.
	ErrUnimplemented = errors.New("application: unimplemented command")
	// ErrInvalidUsage is returned when a command is missing arguments.
	ErrInvalidUsage = errors.New("application: invalid usage")
	// ErrCodewordNotConfigured is returned when neither the current meeting
	// nor the schedule defines a codeword.
	ErrCodewordNotConfigured = errors.New("application: codeword not configured")
	// ErrCodewordMismatch is returned when the supplied codeword is wrong.
	ErrCodewordMismatch = errors.New("application: codeword mismatch")
)

// NotFoundError names the entity a command referred to.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// Is reports ErrNotFound equivalence.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UsageError carries the usage line of the command that was misused.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// Is reports ErrInvalidUsage equivalence.
func (e *UsageError) Is(target error) bool { return target == ErrInvalidUsage }

// replyText renders err as the chat reply sent back to the command's sender.
func replyText(err error) string {
	var (
		nf    *NotFoundError
		usage *UsageError
	)
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Error: Only Hosts and Co-hosts can issue Chat Commands"
	case errors.Is(err, ErrUnimplemented):
		return "Error: Unimplemented Chat Command"
	case errors.As(err, &nf):
		return "Error: " + nf.Error()
	case errors.As(err, &usage):
		return "Error: " + usage.Error()
	case errors.Is(err, ErrCodewordNotConfigured):
		return "Error: no codeword is configured for this command"
	case errors.Is(err, ErrCodewordMismatch):
		return "Error: wrong codeword"
	case errors.Is(err, scheduler.ErrNoCurrentMeeting):
		return "Error: no meeting is in progress"
	case errors.Is(err, scheduler.ErrInvalidExtension):
		return "Error: extension must be a positive number of minutes"
	default:
		return "Error: command failed"
	}
}
