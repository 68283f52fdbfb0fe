package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/meeting-conductor/internal/application"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleSnapshotError maps a failed snapshot request to a status code.
func (r responder) handleSnapshotError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrStopped):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "CONDUCTOR_STOPPED",
			Message:   "the conductor is not running",
		})
	case errors.Is(err, context.DeadlineExceeded):
		r.writeJSON(ctx, w, http.StatusGatewayTimeout, errorResponse{
			ErrorCode: "SNAPSHOT_TIMEOUT",
			Message:   "the conductor did not answer in time",
		})
	case errors.Is(err, context.Canceled):
		// the client went away; nobody is left to read a body
		r.loggerFor(ctx).DebugContext(ctx, "request cancelled")
	default:
		r.writeError(ctx, w, http.StatusInternalServerError, err)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
}
