package http

import (
	"context"
	"log/slog"

	"github.com/example/meeting-conductor/internal/logging"
)

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
