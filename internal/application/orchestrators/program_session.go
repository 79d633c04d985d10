package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
	"sanctuary/internal/domain/program"
	"sanctuary/internal/domain/programsession"
)

// ProgramSessionStoreForControl defines the store interface needed to open and close programs.
type ProgramSessionStoreForControl interface {
	Open(ctx context.Context, p program.Program, serviceDate, openedBy string, now time.Time) (programsession.Session, error)
	Close(ctx context.Context, p program.Program, serviceDate, closedBy string, now time.Time) (programsession.Session, error)
}

// ProgramSessionInput carries input for OpenProgramSession and CloseProgramSession.
type ProgramSessionInput struct {
	Program string
	Actor   account.Caller
}

// ProgramSessionDeps holds dependencies for the program session controller.
type ProgramSessionDeps struct {
	SessionStore ProgramSessionStoreForControl
	AuditStore   AuditStore
	Clock        Clock
	// Location defines the calendar day of a service. Nil means time.Local.
	Location *time.Location
}

// ExecuteOpenProgramSession opens today's session for a program. Reopening a
// closed session reactivates the same row.
// PRE: Actor is staff
// POST: (program, today) session is active
// INVARIANT: At most one session per (program, service date)
func ExecuteOpenProgramSession(ctx context.Context, input ProgramSessionInput, deps ProgramSessionDeps) (programsession.Session, error) {
	if !input.Actor.IsStaff() {
		return programsession.Session{}, ErrStaffOnly
	}
	p, err := program.Parse(input.Program)
	if err != nil {
		return programsession.Session{}, err
	}
	now := deps.Clock.now()
	day := programsession.ServiceDate(now, deps.Location)

	s, err := deps.SessionStore.Open(ctx, p, day, input.Actor.ID, now)
	if err != nil {
		return programsession.Session{}, err
	}

	slog.Info("program_event", "event", "program_opened", "program", p, "service_date", day, "session_id", s.ID, "by", input.Actor.ID)
	recordAudit(ctx, deps.AuditStore, newAudit(input.Actor, audit.CategoryProgramSession, audit.ActionOpen, now).
		WithResource("program_session", s.ID).
		WithDescription(string(p)+" "+day))
	return s, nil
}

// ExecuteCloseProgramSession closes today's session for a program.
// PRE: Actor is staff
// POST: Session is closed, or programsession.ErrNoActiveSession when it was not open
func ExecuteCloseProgramSession(ctx context.Context, input ProgramSessionInput, deps ProgramSessionDeps) (programsession.Session, error) {
	if !input.Actor.IsStaff() {
		return programsession.Session{}, ErrStaffOnly
	}
	p, err := program.Parse(input.Program)
	if err != nil {
		return programsession.Session{}, err
	}
	now := deps.Clock.now()
	day := programsession.ServiceDate(now, deps.Location)

	s, err := deps.SessionStore.Close(ctx, p, day, input.Actor.ID, now)
	if err != nil {
		return programsession.Session{}, err
	}

	slog.Info("program_event", "event", "program_closed", "program", p, "service_date", day, "session_id", s.ID, "by", input.Actor.ID)
	recordAudit(ctx, deps.AuditStore, newAudit(input.Actor, audit.CategoryProgramSession, audit.ActionClose, now).
		WithResource("program_session", s.ID).
		WithDescription(string(p)+" "+day))
	return s, nil
}
