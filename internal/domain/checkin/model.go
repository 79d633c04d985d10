// Package checkin records attendance against an event's check-in session.
package checkin

import (
	"errors"
	"strings"
	"time"

	"sanctuary/internal/domain/failure"
)

// Attendee type constants
const (
	TypeMember = "member"
	TypeGuest  = "guest"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength          = 100
	MaxPrayerRequestLength = 2000
	MaxChildrenCount       = 20
)

// Domain errors
var (
	ErrAlreadyCheckedIn = failure.New(failure.ErrDuplicate, "you are already checked in to this session")
	ErrNoAttendee       = errors.New("check-in must have a member or guest attendee")
)

// Attendee is either a MemberAttendee or a GuestAttendee.
type Attendee interface {
	attendeeType() string
}

// MemberAttendee is a signed-in member.
type MemberAttendee struct {
	MemberID string
}

func (MemberAttendee) attendeeType() string { return TypeMember }

// GuestAttendee carries the contact details a visitor leaves at the door.
type GuestAttendee struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

func (GuestAttendee) attendeeType() string { return TypeGuest }

// Validate checks the guest contact fields.
// PRE: none
// POST: Returns a validation error when the guest cannot be contacted or named
func (g GuestAttendee) Validate() error {
	if strings.TrimSpace(g.FirstName) == "" {
		return failure.Validation("guest first name is required")
	}
	if len(g.FirstName) > MaxNameLength || len(g.LastName) > MaxNameLength {
		return failure.Validation("guest name cannot exceed 100 characters")
	}
	if strings.TrimSpace(g.Phone) == "" && strings.TrimSpace(g.Email) == "" {
		return failure.Validation("guest phone or email is required")
	}
	if g.Email != "" && !strings.Contains(g.Email, "@") {
		return failure.Validation("guest email must be valid")
	}
	return nil
}

// FullName joins the guest's names.
func (g GuestAttendee) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// CheckIn is one attendance record. Immutable once stored.
type CheckIn struct {
	ID            string
	SessionID     string
	EventID       string
	Attendee      Attendee
	FirstTime     bool
	ContactOK     bool
	ChildrenCount int
	PrayerRequest string
	CreatedAt     time.Time
}

// Type returns "member" or "guest".
// INVARIANT: CheckIn fields are not mutated
func (c *CheckIn) Type() string {
	if c.Attendee == nil {
		return ""
	}
	return c.Attendee.attendeeType()
}

// MemberID returns the member reference, or "" for guests.
func (c *CheckIn) MemberID() string {
	if m, ok := c.Attendee.(MemberAttendee); ok {
		return m.MemberID
	}
	return ""
}

// Guest returns the guest details and true for guest check-ins.
func (c *CheckIn) Guest() (GuestAttendee, bool) {
	g, ok := c.Attendee.(GuestAttendee)
	return g, ok
}

// Validate checks if the CheckIn has valid data.
// PRE: CheckIn struct is populated
// POST: Returns nil if valid, error otherwise
func (c *CheckIn) Validate() error {
	if c.SessionID == "" || c.EventID == "" {
		return errors.New("check-in must reference a session and event")
	}
	switch a := c.Attendee.(type) {
	case MemberAttendee:
		if a.MemberID == "" {
			return failure.Validation("member is required")
		}
	case GuestAttendee:
		if err := a.Validate(); err != nil {
			return err
		}
	default:
		return ErrNoAttendee
	}
	if c.ChildrenCount < 0 || c.ChildrenCount > MaxChildrenCount {
		return failure.Validation("children count must be between 0 and 20")
	}
	if len(c.PrayerRequest) > MaxPrayerRequestLength {
		return failure.Validation("prayer request cannot exceed 2000 characters")
	}
	if c.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}
