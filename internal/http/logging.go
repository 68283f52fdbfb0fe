package http

import (
	"context"
	"log/slog"

	"github.com/example/meeting-conductor/internal/application"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// endpointLogger prefers the request-scoped logger installed by RequestLogger
// and tags it with the status endpoint being served.
func endpointLogger(ctx context.Context, fallback *slog.Logger, endpoint string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}
	return logger.With(append([]any{"endpoint", endpoint}, attrs...)...)
}

// snapshotAttrs summarises what a snapshot reported without its roster or
// credentials.
func snapshotAttrs(snap application.Snapshot) []any {
	attrs := []any{"mode", string(snap.Mode), "scheduler_state", string(snap.State)}
	if snap.Current != nil {
		attrs = append(attrs, "meeting", snap.Current.Name)
	}
	return attrs
}
