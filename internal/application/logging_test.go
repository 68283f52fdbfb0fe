package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/meeting-conductor/internal/logging"
	"github.com/example/meeting-conductor/internal/scheduler"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestCommandLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&base, nil))
	scopedLogger := slog.New(slog.NewTextHandler(&scoped, nil))

	commandLogger(context.Background(), baseLogger, "/mx", 7).Info("dispatched")
	if !strings.Contains(base.String(), "command=/mx") || !strings.Contains(base.String(), "sender_id=7") {
		t.Fatalf("expected command attributes, got %q", base.String())
	}

	ctx := logging.ContextWithLogger(context.Background(), scopedLogger)
	commandLogger(ctx, baseLogger, "/ua", 8, "group", "leaders").Info("dispatched")
	if !strings.Contains(scoped.String(), "group=leaders") {
		t.Fatalf("expected context logger to be used, got %q", scoped.String())
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrUnauthorized, "unauthorized"},
		{&NotFoundError{Kind: "group", Name: "x"}, "not_found"},
		{fmt.Errorf("wrapped: %w", ErrCodewordMismatch), "codeword_mismatch"},
		{ErrCodewordNotConfigured, "codeword_not_configured"},
		{&UsageError{Usage: "/gd <group>"}, "invalid_usage"},
		{scheduler.ErrNoCurrentMeeting, "no_current_meeting"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
