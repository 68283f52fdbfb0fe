package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/meeting-conductor/internal/application"
	"github.com/example/meeting-conductor/internal/roster"
	"github.com/example/meeting-conductor/internal/scheduler"
)

// DefaultSnapshotTimeout bounds how long a request waits for the event loop.
const DefaultSnapshotTimeout = 2 * time.Second

type snapshotSource interface {
	Snapshot(ctx context.Context) (application.Snapshot, error)
}

type StatusHandler struct {
	source    snapshotSource
	timeout   time.Duration
	responder responder
	logger    *slog.Logger
}

func NewStatusHandler(source snapshotSource, timeout time.Duration, logger *slog.Logger) *StatusHandler {
	base := defaultLogger(logger)
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}
	return &StatusHandler{source: source, timeout: timeout, responder: newResponder(base), logger: base}
}

func (h *StatusHandler) log(ctx context.Context, endpoint string, attrs ...any) *slog.Logger {
	return endpointLogger(ctx, h.logger, endpoint, attrs...)
}

func (h *StatusHandler) snapshot(r *http.Request) (application.Snapshot, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	return h.source.Snapshot(ctx)
}

func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.log(r.Context(), "/healthz").WarnContext(r.Context(), "health check failed", "error", err)
		h.responder.handleSnapshotError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok", Mode: string(snap.Mode)})
}

func (h *StatusHandler) State(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.responder.handleSnapshotError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "/state", append(snapshotAttrs(snap), "participants", len(snap.Participants))...).DebugContext(r.Context(), "serving state")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toStateResponse(snap))
}

func (h *StatusHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.responder.handleSnapshotError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "/schedule", append(snapshotAttrs(snap), "meetings", len(snap.Meetings))...).DebugContext(r.Context(), "serving schedule")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponse(snap))
}

type healthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

type stateResponse struct {
	TakenAt        time.Time            `json:"taken_at"`
	Mode           string               `json:"mode"`
	Pro            bool                 `json:"pro"`
	Identity       application.Identity `json:"identity"`
	SchedulerState string               `json:"scheduler_state"`
	CurrentMeeting *meetingDTO          `json:"current_meeting,omitempty"`
	Participants   []roster.Participant `json:"participants"`
	Groups         map[string][]int     `json:"groups"`
}

type scheduleResponse struct {
	TakenAt        time.Time            `json:"taken_at"`
	SchedulerState string               `json:"scheduler_state"`
	CurrentMeeting *meetingDTO          `json:"current_meeting,omitempty"`
	Meetings       []meetingDTO         `json:"meetings"`
	Conflicts      []scheduler.Conflict `json:"conflicts"`
}

// meetingDTO omits credentials; the meeting id is enough to identify it.
type meetingDTO struct {
	Name      string    `json:"name"`
	MeetingID string    `json:"meeting_id,omitempty"`
	Dated     bool      `json:"dated"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	HardEnd   time.Time `json:"hard_end"`
	CoHosts   []string  `json:"cohosts,omitempty"`
}

func toMeetingDTO(m scheduler.Meeting) meetingDTO {
	return meetingDTO{
		Name:      m.Name,
		MeetingID: m.MeetingID,
		Dated:     m.Dated,
		Start:     m.Start,
		End:       m.End,
		HardEnd:   m.HardEnd,
		CoHosts:   m.CoHosts,
	}
}

func currentMeeting(snap application.Snapshot) *meetingDTO {
	if snap.Current == nil {
		return nil
	}
	dto := toMeetingDTO(*snap.Current)
	return &dto
}

func toStateResponse(snap application.Snapshot) stateResponse {
	participants := snap.Participants
	if participants == nil {
		participants = []roster.Participant{}
	}
	groups := snap.Groups
	if groups == nil {
		groups = map[string][]int{}
	}
	return stateResponse{
		TakenAt:        snap.TakenAt,
		Mode:           string(snap.Mode),
		Pro:            snap.Pro,
		Identity:       snap.Identity,
		SchedulerState: string(snap.State),
		CurrentMeeting: currentMeeting(snap),
		Participants:   participants,
		Groups:         groups,
	}
}

func toScheduleResponse(snap application.Snapshot) scheduleResponse {
	meetings := make([]meetingDTO, 0, len(snap.Meetings))
	for _, m := range snap.Meetings {
		if m.Exclude {
			continue
		}
		meetings = append(meetings, toMeetingDTO(m))
	}
	conflicts := snap.Conflicts
	if conflicts == nil {
		conflicts = []scheduler.Conflict{}
	}
	return scheduleResponse{
		TakenAt:        snap.TakenAt,
		SchedulerState: string(snap.State),
		CurrentMeeting: currentMeeting(snap),
		Meetings:       meetings,
		Conflicts:      conflicts,
	}
}
