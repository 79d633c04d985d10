package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"sanctuary/internal/domain/program"
	"sanctuary/internal/domain/programsession"
)

// TestProgramSession_OpenCloseReopen verifies reopening keeps the same session.
func TestProgramSession_OpenCloseReopen(t *testing.T) {
	store := newMemProgramSessions()
	audits := &memAuditStore{}
	deps := ProgramSessionDeps{SessionStore: store, AuditStore: audits, Clock: fixedClock(), Location: time.UTC}
	in := ProgramSessionInput{Program: "daycare", Actor: staff}

	opened, err := ExecuteOpenProgramSession(context.Background(), in, deps)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened.ServiceDate != "2026-03-01" || !opened.IsActive() {
		t.Errorf("opened = %+v", opened)
	}
	closed, err := ExecuteCloseProgramSession(context.Background(), in, deps)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.IsActive() {
		t.Errorf("session still active after close")
	}
	reopened, err := ExecuteOpenProgramSession(context.Background(), in, deps)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.ID != opened.ID {
		t.Errorf("reopen created a new session %s, want %s", reopened.ID, opened.ID)
	}
	if len(audits.events) != 3 {
		t.Errorf("audit events = %d, want 3", len(audits.events))
	}
}

func TestProgramSession_CloseWhenNotOpen(t *testing.T) {
	deps := ProgramSessionDeps{SessionStore: newMemProgramSessions(), Clock: fixedClock(), Location: time.UTC}
	_, err := ExecuteCloseProgramSession(context.Background(), ProgramSessionInput{Program: "youth", Actor: staff}, deps)
	if !errors.Is(err, programsession.ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestProgramSession_Guards(t *testing.T) {
	deps := ProgramSessionDeps{SessionStore: newMemProgramSessions(), Clock: fixedClock(), Location: time.UTC}
	if _, err := ExecuteOpenProgramSession(context.Background(), ProgramSessionInput{Program: "daycare", Actor: parent}, deps); !errors.Is(err, ErrStaffOnly) {
		t.Errorf("member open: err = %v, want ErrStaffOnly", err)
	}
	if _, err := ExecuteOpenProgramSession(context.Background(), ProgramSessionInput{Program: "choir", Actor: staff}, deps); !errors.Is(err, program.ErrUnknownProgram) {
		t.Errorf("unknown program: err = %v, want ErrUnknownProgram", err)
	}
}

// TestProgramSession_ServiceDateUsesLocation verifies the day boundary follows the configured zone.
func TestProgramSession_ServiceDateUsesLocation(t *testing.T) {
	auckland := time.FixedZone("NZDT", 13*60*60)
	late := func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }
	deps := ProgramSessionDeps{SessionStore: newMemProgramSessions(), Clock: late, Location: auckland}

	s, err := ExecuteOpenProgramSession(context.Background(), ProgramSessionInput{Program: "teen", Actor: staff}, deps)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.ServiceDate != "2026-03-02" {
		t.Errorf("service date = %s, want 2026-03-02", s.ServiceDate)
	}
}
