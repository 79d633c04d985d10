package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/code"
	"sanctuary/internal/domain/event"
	"sanctuary/internal/domain/eventsession"
	"sanctuary/internal/domain/failure"
)

type memEventStore struct {
	saved []event.Event
}

func (s *memEventStore) Save(_ context.Context, e event.Event) error {
	s.saved = append(s.saved, e)
	return nil
}

// stubSessionStore mimics the storage contract: one active session system-wide.
type stubSessionStore struct {
	active *eventsession.Session
	ended  []eventsession.Session
}

func (s *stubSessionStore) Start(ctx context.Context, eventID, startedBy string, now time.Time, gen *code.Generator) (eventsession.Session, bool, error) {
	if s.active != nil {
		if s.active.EventID == eventID {
			return *s.active, false, nil
		}
		return eventsession.Session{}, false, eventsession.ErrAnotherSessionActive
	}
	c, err := gen.Generate(ctx, code.ScopeFunc(func(context.Context) ([]string, error) { return nil, nil }))
	if err != nil {
		return eventsession.Session{}, false, err
	}
	sess := eventsession.Session{ID: "es-" + eventID, EventID: eventID, Code: c, Status: eventsession.StatusActive, StartedAt: now, StartedBy: startedBy}
	s.active = &sess
	return sess, true, nil
}

func (s *stubSessionStore) StopForEvent(_ context.Context, eventID string, now time.Time) ([]eventsession.Session, error) {
	if s.active == nil || s.active.EventID != eventID {
		return nil, nil
	}
	sess := *s.active
	_ = sess.End(now)
	s.ended = append(s.ended, sess)
	s.active = nil
	return []eventsession.Session{sess}, nil
}

func TestCreateEvent_StaffOnly(t *testing.T) {
	store := &memEventStore{}
	_, err := ExecuteCreateEvent(context.Background(), CreateEventInput{Title: "Sunday", StartsAt: testNow, Actor: parent},
		CreateEventDeps{EventStore: store, Clock: fixedClock()})
	if !errors.Is(err, ErrStaffOnly) {
		t.Fatalf("err = %v, want ErrStaffOnly", err)
	}

	e, err := ExecuteCreateEvent(context.Background(), CreateEventInput{Title: " Sunday Service ", StartsAt: testNow, Actor: staff},
		CreateEventDeps{EventStore: store, Clock: fixedClock()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Title != "Sunday Service" || e.Status != event.StatusScheduled || len(store.saved) != 1 {
		t.Errorf("event = %+v", e)
	}
}

// TestStartEventSession_IssuesCode verifies a start yields a 4-digit code and one audit event.
func TestStartEventSession_IssuesCode(t *testing.T) {
	audits := &memAuditStore{}
	deps := EventSessionDeps{
		SessionStore: &stubSessionStore{},
		Generator:    &code.Generator{MaxAttempts: 20, Intn: func(int) (int, error) { return 42, nil }},
		AuditStore:   audits,
		Clock:        fixedClock(),
	}

	s, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: staff}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Code != "0042" {
		t.Errorf("code = %q, want 0042", s.Code)
	}
	if len(audits.events) != 1 {
		t.Errorf("expected 1 audit event, got %d", len(audits.events))
	}
}

// TestStartEventSession_SameEventReturnsExisting verifies a repeated start is a no-op.
func TestStartEventSession_SameEventReturnsExisting(t *testing.T) {
	audits := &memAuditStore{}
	deps := EventSessionDeps{SessionStore: &stubSessionStore{}, AuditStore: audits, Clock: fixedClock()}

	first, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: staff}, deps)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: staff}, deps)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if first.ID != second.ID || first.Code != second.Code {
		t.Errorf("second start returned %+v, want %+v", second, first)
	}
	if len(audits.events) != 1 {
		t.Errorf("repeat start must not audit, got %d events", len(audits.events))
	}
}

// TestStartEventSession_OtherEventConflicts verifies global exclusivity surfaces as a conflict.
func TestStartEventSession_OtherEventConflicts(t *testing.T) {
	deps := EventSessionDeps{SessionStore: &stubSessionStore{}, Clock: fixedClock()}
	if _, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: staff}, deps); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-2", Actor: staff}, deps)
	if failure.Kind(err) != failure.KindConflict {
		t.Errorf("kind = %q, want conflict", failure.Kind(err))
	}
}

func TestStartEventSession_MemberForbidden(t *testing.T) {
	deps := EventSessionDeps{SessionStore: &stubSessionStore{}, Clock: fixedClock()}
	_, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: account.Caller{ID: "m", Role: account.RoleMember}}, deps)
	if !errors.Is(err, ErrStaffOnly) {
		t.Errorf("err = %v, want ErrStaffOnly", err)
	}
}

// TestStartEventSession_Exhausted verifies the generator's failure passes through.
func TestStartEventSession_Exhausted(t *testing.T) {
	deps := EventSessionDeps{
		SessionStore: &stubSessionStore{},
		Generator:    &code.Generator{MaxAttempts: 3, Intn: func(int) (int, error) { return 0, errors.New("entropy unavailable") }},
		Clock:        fixedClock(),
	}
	if _, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: staff}, deps); err == nil {
		t.Fatal("expected an error")
	}
}

// TestStopEventSession_ThenRestart verifies a stop frees the slot for another event.
func TestStopEventSession_ThenRestart(t *testing.T) {
	store := &stubSessionStore{}
	audits := &memAuditStore{}
	deps := EventSessionDeps{SessionStore: store, AuditStore: audits, Clock: fixedClock()}

	if _, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: staff}, deps); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ExecuteStopEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: staff}, deps); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := ExecuteStopEventSession(context.Background(), EventSessionInput{EventID: "ev-1", Actor: staff}, deps); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
	if len(store.ended) != 1 {
		t.Errorf("ended = %d, want 1", len(store.ended))
	}
	if _, err := ExecuteStartEventSession(context.Background(), EventSessionInput{EventID: "ev-2", Actor: staff}, deps); err != nil {
		t.Errorf("start after stop: %v", err)
	}
	if len(audits.events) != 3 {
		t.Errorf("audit events = %d, want 3", len(audits.events))
	}
}
