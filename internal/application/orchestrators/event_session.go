package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
	"sanctuary/internal/domain/code"
	"sanctuary/internal/domain/event"
	"sanctuary/internal/domain/eventsession"
)

// EventStoreForCreate defines the store interface needed by CreateEvent.
type EventStoreForCreate interface {
	Save(ctx context.Context, e event.Event) error
}

// CreateEventInput carries input for the orchestrator.
type CreateEventInput struct {
	Title    string
	StartsAt time.Time
	Actor    account.Caller
}

// CreateEventDeps holds dependencies for CreateEvent.
type CreateEventDeps struct {
	EventStore EventStoreForCreate
	Clock      Clock
}

// ExecuteCreateEvent schedules a new event.
// PRE: Actor is staff
// POST: Event persisted with status scheduled
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps CreateEventDeps) (event.Event, error) {
	if !input.Actor.IsStaff() {
		return event.Event{}, ErrStaffOnly
	}
	e := event.Event{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(input.Title),
		StartsAt:  input.StartsAt,
		Status:    event.StatusScheduled,
		CreatedBy: input.Actor.ID,
		CreatedAt: deps.Clock.now(),
	}
	if err := e.Validate(); err != nil {
		return event.Event{}, err
	}
	if err := deps.EventStore.Save(ctx, e); err != nil {
		return event.Event{}, err
	}
	slog.Info("session_event", "event", "event_created", "event_id", e.ID, "title", e.Title)
	return e, nil
}

// EventSessionStoreForControl defines the store interface needed to start and stop sessions.
type EventSessionStoreForControl interface {
	Start(ctx context.Context, eventID, startedBy string, now time.Time, gen *code.Generator) (eventsession.Session, bool, error)
	StopForEvent(ctx context.Context, eventID string, now time.Time) ([]eventsession.Session, error)
}

// EventSessionInput carries input for StartEventSession and StopEventSession.
type EventSessionInput struct {
	EventID string
	Actor   account.Caller
}

// EventSessionDeps holds dependencies for the event session controller.
type EventSessionDeps struct {
	SessionStore EventSessionStoreForControl
	Generator    *code.Generator
	AuditStore   AuditStore
	Clock        Clock
}

// ExecuteStartEventSession opens the check-in window for an event.
// PRE: Actor is staff; EventID is non-empty
// POST: The event's session is active with a fresh 4-digit code, or the
// already-active session of the same event is returned unchanged
// INVARIANT: At most one active event session system-wide
func ExecuteStartEventSession(ctx context.Context, input EventSessionInput, deps EventSessionDeps) (eventsession.Session, error) {
	if !input.Actor.IsStaff() {
		return eventsession.Session{}, ErrStaffOnly
	}
	if input.EventID == "" {
		return eventsession.Session{}, event.ErrNotFound
	}
	gen := deps.Generator
	if gen == nil {
		gen = code.NewGenerator()
	}
	now := deps.Clock.now()

	s, created, err := deps.SessionStore.Start(ctx, input.EventID, input.Actor.ID, now, gen)
	if err != nil {
		slog.Info("session_event", "event", "start_rejected", "event_id", input.EventID, "error", err)
		return eventsession.Session{}, err
	}
	if !created {
		return s, nil
	}

	slog.Info("session_event", "event", "session_started", "event_id", s.EventID, "session_id", s.ID, "by", input.Actor.ID)
	recordAudit(ctx, deps.AuditStore, newAudit(input.Actor, audit.CategoryEventSession, audit.ActionStart, now).
		WithResource("event_session", s.ID).
		WithDescription("check-in opened for event "+s.EventID))
	return s, nil
}

// ExecuteStopEventSession closes every active check-in window of an event.
// PRE: Actor is staff; EventID is non-empty
// POST: No active session references the event; no-op when none was active
func ExecuteStopEventSession(ctx context.Context, input EventSessionInput, deps EventSessionDeps) error {
	if !input.Actor.IsStaff() {
		return ErrStaffOnly
	}
	if input.EventID == "" {
		return event.ErrNotFound
	}
	now := deps.Clock.now()

	ended, err := deps.SessionStore.StopForEvent(ctx, input.EventID, now)
	if err != nil {
		return err
	}
	for _, s := range ended {
		slog.Info("session_event", "event", "session_ended", "event_id", s.EventID, "session_id", s.ID, "by", input.Actor.ID)
		recordAudit(ctx, deps.AuditStore, newAudit(input.Actor, audit.CategoryEventSession, audit.ActionStop, now).
			WithResource("event_session", s.ID))
	}
	return nil
}
