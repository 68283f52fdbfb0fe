package persistence

import "errors"

var (
	// ErrInvalidEntry is returned when a journal entry lacks an id, kind or subject.
	ErrInvalidEntry = errors.New("persistence: invalid journal entry")
)
