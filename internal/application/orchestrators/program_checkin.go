package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	storeProgramCheckIn "sanctuary/internal/adapters/storage/programcheckin"
	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
	"sanctuary/internal/domain/child"
	"sanctuary/internal/domain/code"
	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/member"
	"sanctuary/internal/domain/program"
	"sanctuary/internal/domain/programcheckin"
	"sanctuary/internal/domain/programsession"
)

// ProgramSessionLookup defines the store interface needed to find today's session.
type ProgramSessionLookup interface {
	Get(ctx context.Context, p program.Program, serviceDate string) (programsession.Session, error)
}

// ChildLookup defines the store interface needed to load children.
type ChildLookup interface {
	ListByIDs(ctx context.Context, ids []string) (map[string]child.Child, error)
}

// ProgramCheckInStoreForChildren defines the store interface needed by CheckInChildren.
type ProgramCheckInStoreForChildren interface {
	CheckInChildren(ctx context.Context, b storeProgramCheckIn.Batch, gen *code.Generator) ([]programcheckin.CheckIn, []programcheckin.Skip, error)
}

// CheckInChildrenInput carries a parent's request to check children in.
type CheckInChildrenInput struct {
	Program          string
	ChildIDs         []string
	Parent           account.Caller
	EmergencyContact programcheckin.Contact
	Notes            string
}

// CheckInChildrenResult reports per-child outcomes.
type CheckInChildrenResult struct {
	Created []programcheckin.CheckIn
	Skipped []programcheckin.Skip
}

// CheckInChildrenDeps holds dependencies for CheckInChildren.
type CheckInChildrenDeps struct {
	SessionStore ProgramSessionLookup
	ChildStore   ChildLookup
	CheckInStore ProgramCheckInStoreForChildren
	Generator    *code.Generator
	// YouthPickupCodes issues pickup codes for the youth program too.
	YouthPickupCodes bool
	AuditStore       AuditStore
	Clock            Clock
	Location         *time.Location
}

// ExecuteCheckInChildren checks a parent's children in to today's session of a program.
// PRE: Parent is the authenticated caller
// POST: Each eligible, owned child not yet present has one check-in; every
// other requested child is reported in Skipped with a reason
// INVARIANT: Outstanding pickup codes are unique among today's sessions
func ExecuteCheckInChildren(ctx context.Context, input CheckInChildrenInput, deps CheckInChildrenDeps) (CheckInChildrenResult, error) {
	p, err := program.Parse(input.Program)
	if err != nil {
		return CheckInChildrenResult{}, err
	}
	if p == program.Teen {
		return CheckInChildrenResult{}, failure.Validation("teens check themselves in")
	}
	contact := programcheckin.Contact{
		Name:  strings.TrimSpace(input.EmergencyContact.Name),
		Phone: strings.TrimSpace(input.EmergencyContact.Phone),
	}
	if err := contact.Validate(); err != nil {
		return CheckInChildrenResult{}, err
	}
	ids := uniqueIDs(input.ChildIDs)
	if len(ids) == 0 {
		return CheckInChildrenResult{}, failure.Validation("select at least one child")
	}

	now := deps.Clock.now()
	today := programsession.ServiceDate(now, deps.Location)
	session, err := activeSession(ctx, deps.SessionStore, p, today)
	if err != nil {
		return CheckInChildrenResult{}, err
	}

	children, err := deps.ChildStore.ListByIDs(ctx, ids)
	if err != nil {
		return CheckInChildrenResult{}, err
	}

	day, _ := time.Parse(programsession.DateLayout, today)
	var result CheckInChildrenResult
	var entries []programcheckin.CheckIn
	for _, id := range ids {
		c, ok := children[id]
		if !ok || !c.OwnedBy(input.Parent.ID) {
			result.Skipped = append(result.Skipped, programcheckin.Skip{ChildID: id, Reason: programcheckin.SkipNotOwner})
			continue
		}
		if c.EligibleProgramOn(day) != p {
			result.Skipped = append(result.Skipped, programcheckin.Skip{ChildID: id, Reason: programcheckin.SkipIneligible})
			continue
		}
		entries = append(entries, programcheckin.CheckIn{
			ID:               uuid.New().String(),
			SessionID:        session.ID,
			Program:          p,
			Attendee:         programcheckin.ChildAttendee{ChildID: id},
			EmergencyContact: contact,
			Notes:            strings.TrimSpace(input.Notes),
			CheckedInAt:      now,
		})
	}
	if len(entries) == 0 {
		return result, nil
	}

	gen := deps.Generator
	if gen == nil {
		gen = code.NewGenerator()
	}
	created, skipped, err := deps.CheckInStore.CheckInChildren(ctx, storeProgramCheckIn.Batch{
		SessionID:   session.ID,
		ServiceDate: today,
		IssueCodes:  p.IssuesPickupCode(deps.YouthPickupCodes),
		CheckIns:    entries,
	}, gen)
	if err != nil {
		slog.Warn("program_event", "event", "child_checkin_failed", "program", p, "parent_id", input.Parent.ID, "error", err)
		return CheckInChildrenResult{}, err
	}
	result.Created = created
	result.Skipped = append(result.Skipped, skipped...)

	for _, c := range created {
		slog.Info("program_event", "event", "child_checked_in", "program", p, "child_id", c.ChildID(), "session_id", c.SessionID, "pickup_code_issued", c.PickupCode != "")
		recordAudit(ctx, deps.AuditStore, newAudit(input.Parent, audit.CategoryProgramCheckIn, audit.ActionCreate, now).
			WithResource("program_checkin", c.ID).
			WithDescription("child "+c.ChildID()))
	}
	return result, nil
}

// MemberLookup defines the store interface needed to read member profiles.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// ProgramCheckInStoreForTeen defines the store interface needed by CheckInTeen.
type ProgramCheckInStoreForTeen interface {
	CheckInTeen(ctx context.Context, c programcheckin.CheckIn) (programcheckin.CheckIn, error)
}

// CheckInTeenInput carries a teen's self check-in.
type CheckInTeenInput struct {
	Teen account.Caller
}

// CheckInTeenDeps holds dependencies for CheckInTeen.
type CheckInTeenDeps struct {
	MemberStore  MemberLookup
	SessionStore ProgramSessionLookup
	CheckInStore ProgramCheckInStoreForTeen
	AuditStore   AuditStore
	Clock        Clock
	Location     *time.Location
}

// ExecuteCheckInTeen checks the caller in to today's teen session. Teens
// receive no pickup code.
// PRE: Teen is the authenticated caller
// POST: One teen check-in exists for (session, caller)
func ExecuteCheckInTeen(ctx context.Context, input CheckInTeenInput, deps CheckInTeenDeps) (programcheckin.CheckIn, error) {
	profile, err := deps.MemberStore.GetByID(ctx, input.Teen.ID)
	if errors.Is(err, member.ErrNotFound) {
		return programcheckin.CheckIn{}, programcheckin.ErrNoBirthday
	}
	if err != nil {
		return programcheckin.CheckIn{}, err
	}
	if !profile.HasBirthday() {
		return programcheckin.CheckIn{}, programcheckin.ErrNoBirthday
	}

	now := deps.Clock.now()
	today := programsession.ServiceDate(now, deps.Location)
	day, _ := time.Parse(programsession.DateLayout, today)
	if age := profile.AgeOn(day); age < program.TeenMin || age > program.TeenMax {
		return programcheckin.CheckIn{}, programcheckin.ErrTeenAge
	}

	session, err := activeSession(ctx, deps.SessionStore, program.Teen, today)
	if err != nil {
		return programcheckin.CheckIn{}, err
	}

	c, err := deps.CheckInStore.CheckInTeen(ctx, programcheckin.CheckIn{
		ID:          uuid.New().String(),
		SessionID:   session.ID,
		Program:     program.Teen,
		Attendee:    programcheckin.TeenAttendee{TeenUserID: input.Teen.ID},
		CheckedInAt: now,
	})
	if err != nil {
		return programcheckin.CheckIn{}, err
	}

	slog.Info("program_event", "event", "teen_checked_in", "teen_id", input.Teen.ID, "session_id", c.SessionID)
	recordAudit(ctx, deps.AuditStore, newAudit(input.Teen, audit.CategoryProgramCheckIn, audit.ActionCreate, now).
		WithResource("program_checkin", c.ID).
		WithDescription("teen"))
	return c, nil
}

// activeSession returns the active session of p on serviceDate.
func activeSession(ctx context.Context, store ProgramSessionLookup, p program.Program, serviceDate string) (programsession.Session, error) {
	s, err := store.Get(ctx, p, serviceDate)
	if errors.Is(err, programsession.ErrNotFound) {
		return programsession.Session{}, programsession.ErrNoActiveSession
	}
	if err != nil {
		return programsession.Session{}, err
	}
	if !s.IsActive() {
		return programsession.Session{}, programsession.ErrNoActiveSession
	}
	return s, nil
}

// uniqueIDs drops blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
