package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/meeting-conductor/internal/application"
	"github.com/example/meeting-conductor/internal/roster"
	"github.com/example/meeting-conductor/internal/scheduler"
)

type stubSource struct {
	snap application.Snapshot
	err  error
}

func (s stubSource) Snapshot(ctx context.Context) (application.Snapshot, error) {
	if s.err != nil {
		return application.Snapshot{}, s.err
	}
	return s.snap, nil
}

type blockingSource struct{}

func (blockingSource) Snapshot(ctx context.Context) (application.Snapshot, error) {
	<-ctx.Done()
	return application.Snapshot{}, ctx.Err()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSnapshot() application.Snapshot {
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	current := scheduler.Meeting{
		Name: "standup", MeetingID: "42", Password: "secret",
		Start: start, End: start.Add(time.Hour), HardEnd: start.Add(90 * time.Minute),
	}
	return application.Snapshot{
		TakenAt:  start.Add(5 * time.Minute),
		Mode:     application.ModePrimary,
		Pro:      true,
		Identity: application.Identity{ID: 1, Name: "Conductor", Known: true},
		State:    scheduler.StatePending,
		Current:  &current,
		Participants: []roster.Participant{
			{ID: 2, Name: "alice", Role: roster.RoleHost, Online: true},
		},
		Groups: map[string][]int{"leaders": {2, roster.SkipID}},
		Meetings: []scheduler.Meeting{
			current,
			{Name: "holiday", Exclude: true, Start: start, End: start.Add(time.Hour), HardEnd: start.Add(time.Hour)},
		},
	}
}

func newTestRouter(source snapshotSource) http.Handler {
	logger := discardLogger()
	return NewRouter(RouterConfig{
		Status:     NewStatusHandler(source, 50*time.Millisecond, logger),
		Middleware: []func(http.Handler) http.Handler{RequestLogger(logger), Recover(logger)},
	})
}

func TestStatusHandlers(t *testing.T) {
	router := newTestRouter(stubSource{snap: sampleSnapshot()})

	t.Run("healthz reports the mode", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body healthResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Status != "ok" || body.Mode != "primary" {
			t.Fatalf("unexpected body: %+v %v", body, err)
		}
	})

	t.Run("state carries roster and groups", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		raw := rec.Body.String()
		if strings.Contains(raw, "secret") {
			t.Fatal("meeting password must never be served")
		}
		var body stateResponse
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Identity.ID != 1 || len(body.Participants) != 1 || body.Groups["leaders"][1] != roster.SkipID {
			t.Fatalf("unexpected state: %+v", body)
		}
		if body.CurrentMeeting == nil || body.CurrentMeeting.Name != "standup" || body.SchedulerState != string(scheduler.StatePending) {
			t.Fatalf("unexpected current meeting: %+v", body.CurrentMeeting)
		}
	})

	t.Run("schedule hides excluded meetings", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule", nil))
		var body scheduleResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Meetings) != 1 || body.Meetings[0].MeetingID != "42" || body.Conflicts == nil {
			t.Fatalf("unexpected schedule: %+v", body)
		}
	})

	t.Run("rejects writes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/state", nil))
		if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != "GET, HEAD" {
			t.Fatalf("expected 405 with Allow header, got %d %q", rec.Code, rec.Header().Get("Allow"))
		}
	})
}

func TestStatusHandlers_SnapshotFailures(t *testing.T) {
	tests := []struct {
		name   string
		source snapshotSource
		want   int
	}{
		{"stopped conductor", stubSource{err: application.ErrStopped}, http.StatusServiceUnavailable},
		{"unresponsive loop", blockingSource{}, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestRouter(tt.source).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestStatusHandlers_LogEndpointWithoutCredentials(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	router := NewRouter(RouterConfig{Status: NewStatusHandler(stubSource{snap: sampleSnapshot()}, 50*time.Millisecond, logger)})

	for _, path := range []string{"/state", "/schedule"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	out := buf.String()
	for _, want := range []string{"endpoint=/state", "endpoint=/schedule", "mode=primary", "meeting=standup"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("meeting password leaked into logs:\n%s", out)
	}
}

func TestRecover(t *testing.T) {
	handler := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestServeListener_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("tcp unavailable: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, ln, newTestRouter(stubSource{snap: sampleSnapshot()}), discardLogger()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
