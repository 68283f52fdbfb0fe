package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/meeting-conductor/internal/logging"
	"github.com/example/meeting-conductor/internal/relay"
	"github.com/example/meeting-conductor/internal/scheduler"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// commandLogger derives the logger for one chat command. A logger carried in
// ctx wins over base.
func commandLogger(ctx context.Context, base *slog.Logger, verb string, senderID int, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"command", verb, "sender_id", senderID}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnimplemented):
		return "unimplemented"
	case errors.Is(err, ErrInvalidUsage):
		return "invalid_usage"
	case errors.Is(err, ErrCodewordNotConfigured):
		return "codeword_not_configured"
	case errors.Is(err, ErrCodewordMismatch):
		return "codeword_mismatch"
	case errors.Is(err, scheduler.ErrNoCurrentMeeting):
		return "no_current_meeting"
	case errors.Is(err, scheduler.ErrInvalidExtension):
		return "invalid_extension"
	case errors.Is(err, relay.ErrMalformed):
		return "malformed_envelope"
	}
	return "unexpected"
}
