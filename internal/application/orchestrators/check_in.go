package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sanctuary/internal/domain/audit"
	"sanctuary/internal/domain/checkin"
	"sanctuary/internal/domain/code"
	"sanctuary/internal/domain/eventsession"
	"sanctuary/internal/domain/failure"
)

// CheckInStore defines the store interface needed by the check-in recorder.
type CheckInStore interface {
	RecordByCode(ctx context.Context, sessionCode string, c checkin.CheckIn) (checkin.CheckIn, error)
}

// CheckInDeps holds dependencies for CheckInMember and CheckInGuest.
type CheckInDeps struct {
	CheckInStore CheckInStore
	AuditStore   AuditStore
	Clock        Clock
}

// CheckInMemberInput carries input for a member's self check-in.
// MemberID comes from the authenticated caller, never from the request body.
type CheckInMemberInput struct {
	Code          string
	MemberID      string
	ChildrenCount int
	PrayerRequest string
}

// ExecuteCheckInMember records a member's attendance against the session the code names.
// PRE: MemberID is the authenticated member
// POST: One check-in row exists for (session, member)
// INVARIANT: A second check-in for the same session fails with checkin.ErrAlreadyCheckedIn
func ExecuteCheckInMember(ctx context.Context, input CheckInMemberInput, deps CheckInDeps) (checkin.CheckIn, error) {
	sessionCode := strings.TrimSpace(input.Code)
	if !code.Valid(sessionCode) {
		return checkin.CheckIn{}, eventsession.ErrInvalidCode
	}
	if input.MemberID == "" {
		return checkin.CheckIn{}, failure.Validation("member is required")
	}

	now := deps.Clock.now()
	c, err := deps.CheckInStore.RecordByCode(ctx, sessionCode, checkin.CheckIn{
		ID:            uuid.New().String(),
		Attendee:      checkin.MemberAttendee{MemberID: input.MemberID},
		ChildrenCount: input.ChildrenCount,
		PrayerRequest: strings.TrimSpace(input.PrayerRequest),
		CreatedAt:     now,
	})
	if err != nil {
		slog.Info("checkin_event", "event", "member_checkin_rejected", "member_id", input.MemberID, "kind", failure.Kind(err))
		return checkin.CheckIn{}, err
	}

	slog.Info("checkin_event", "event", "member_checked_in", "member_id", input.MemberID, "session_id", c.SessionID)
	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.MemberID, "", audit.CategoryCheckIn, audit.ActionCreate, now).
		WithResource("checkin", c.ID).
		WithDescription("member"))
	return c, nil
}

// CheckInGuestInput carries the details a visitor leaves at the door.
// An empty Code checks in to the single active session.
type CheckInGuestInput struct {
	Code          string
	Guest         checkin.GuestAttendee
	FirstTime     bool
	ContactOK     bool
	ChildrenCount int
	PrayerRequest string
}

// ExecuteCheckInGuest records a guest's attendance. Guests are never deduplicated.
// PRE: Guest has a first name and a phone or email
// POST: A new guest check-in row exists
func ExecuteCheckInGuest(ctx context.Context, input CheckInGuestInput, deps CheckInDeps) (checkin.CheckIn, error) {
	sessionCode := strings.TrimSpace(input.Code)
	if sessionCode != "" && !code.Valid(sessionCode) {
		return checkin.CheckIn{}, eventsession.ErrInvalidCode
	}
	guest := checkin.GuestAttendee{
		FirstName: strings.TrimSpace(input.Guest.FirstName),
		LastName:  strings.TrimSpace(input.Guest.LastName),
		Phone:     strings.TrimSpace(input.Guest.Phone),
		Email:     strings.TrimSpace(input.Guest.Email),
	}
	if err := guest.Validate(); err != nil {
		return checkin.CheckIn{}, err
	}

	now := deps.Clock.now()
	c, err := deps.CheckInStore.RecordByCode(ctx, sessionCode, checkin.CheckIn{
		ID:            uuid.New().String(),
		Attendee:      guest,
		FirstTime:     input.FirstTime,
		ContactOK:     input.ContactOK,
		ChildrenCount: input.ChildrenCount,
		PrayerRequest: strings.TrimSpace(input.PrayerRequest),
		CreatedAt:     now,
	})
	if err != nil {
		slog.Info("checkin_event", "event", "guest_checkin_rejected", "kind", failure.Kind(err))
		return checkin.CheckIn{}, err
	}

	slog.Info("checkin_event", "event", "guest_checked_in", "session_id", c.SessionID, "first_time", c.FirstTime)
	recordAudit(ctx, deps.AuditStore, audit.NewEvent("", "", audit.CategoryCheckIn, audit.ActionCreate, now).
		WithResource("checkin", c.ID).
		WithDescription("guest"))
	return c, nil
}
