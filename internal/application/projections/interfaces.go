package projections

import (
	"context"
	"time"

	"sanctuary/internal/adapters/storage/audit"
	"sanctuary/internal/adapters/storage/event"
	domainAudit "sanctuary/internal/domain/audit"
	domainCheckIn "sanctuary/internal/domain/checkin"
	domainChild "sanctuary/internal/domain/child"
	domainEvent "sanctuary/internal/domain/event"
	domainEventSession "sanctuary/internal/domain/eventsession"
	domainMember "sanctuary/internal/domain/member"
	"sanctuary/internal/domain/program"
	domainProgramCheckIn "sanctuary/internal/domain/programcheckin"
	domainProgramSession "sanctuary/internal/domain/programsession"
)

// EventStore interface for event queries.
type EventStore interface {
	GetByID(ctx context.Context, id string) (domainEvent.Event, error)
	List(ctx context.Context, filter event.ListFilter) ([]domainEvent.Event, error)
}

// EventSessionStore interface for event session queries.
type EventSessionStore interface {
	GetActive(ctx context.Context) (*domainEventSession.Session, error)
	GetByID(ctx context.Context, id string) (domainEventSession.Session, error)
}

// CheckInStore interface for event check-in queries.
type CheckInStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domainCheckIn.CheckIn, error)
}

// MemberStore interface for member profile queries.
type MemberStore interface {
	ListByIDs(ctx context.Context, ids []string) (map[string]domainMember.Member, error)
}

// ChildStore interface for child queries.
type ChildStore interface {
	GetByID(ctx context.Context, id string) (domainChild.Child, error)
	ListByParent(ctx context.Context, parentID string) ([]domainChild.Child, error)
	ListByIDs(ctx context.Context, ids []string) (map[string]domainChild.Child, error)
}

// ProgramSessionStore interface for program session queries.
type ProgramSessionStore interface {
	Get(ctx context.Context, p program.Program, serviceDate string) (domainProgramSession.Session, error)
	ListByDate(ctx context.Context, serviceDate string) ([]domainProgramSession.Session, error)
}

// ProgramCheckInStore interface for program check-in queries.
type ProgramCheckInStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domainProgramCheckIn.CheckIn, error)
	ListByChildrenOnDate(ctx context.Context, childIDs []string, serviceDate string) ([]domainProgramCheckIn.CheckIn, error)
}

// AuditStore interface for audit queries.
type AuditStore interface {
	List(ctx context.Context, filter audit.Filter, limit int) ([]domainAudit.Event, error)
}

// Calendar resolves "today" for day-scoped queries.
type Calendar struct {
	Now      func() time.Time // nil means time.Now
	Location *time.Location   // nil means time.Local
}

// Today returns the current service date.
func (c Calendar) Today() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return domainProgramSession.ServiceDate(now(), c.Location)
}

// day parses a service date at UTC midnight for age arithmetic.
func day(serviceDate string) time.Time {
	d, _ := time.Parse(domainProgramSession.DateLayout, serviceDate)
	return d
}
