// Package programcheckin records a child's or teen's presence in a program
// session and the one-way pickup handoff.
package programcheckin

import (
	"errors"
	"strings"
	"time"

	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/program"
)

// Attendee kinds
const (
	KindChild = "child"
	KindTeen  = "teen"
)

// Skip reasons reported for child IDs that were not checked in.
const (
	SkipNotOwner         = "not_owner"
	SkipIneligible       = "ineligible"
	SkipAlreadyCheckedIn = "already_checked_in"
)

// Domain errors
var (
	ErrAlreadyCheckedIn = failure.New(failure.ErrDuplicate, "already checked in to this session")
	ErrInvalidPickup    = failure.New(failure.ErrNotFound, "pickup code not recognised or already used")
	ErrAlreadyPickedUp  = errors.New("already picked up")
	ErrNoPickupCode     = errors.New("check-in has no pickup code")
	ErrTeenAge          = failure.Validation("teen check-in is for ages 16 to 21")
	ErrNoBirthday       = failure.Validation("add your birthday to your profile before checking in")
)

// Attendee is either a ChildAttendee or a TeenAttendee. Exactly one of the
// two is set on every check-in.
type Attendee interface {
	attendeeKind() string
}

// ChildAttendee is a child checked in by a parent.
type ChildAttendee struct {
	ChildID string
}

func (ChildAttendee) attendeeKind() string { return KindChild }

// TeenAttendee is a teen who checked themselves in.
type TeenAttendee struct {
	TeenUserID string
}

func (TeenAttendee) attendeeKind() string { return KindTeen }

// Contact is the emergency contact left at check-in.
type Contact struct {
	Name  string
	Phone string
}

// Validate requires both contact fields.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Phone) == "" {
		return failure.Validation("emergency contact name and phone are required")
	}
	return nil
}

// CheckIn is one presence record in a ProgramSession.
type CheckIn struct {
	ID               string
	SessionID        string
	Program          program.Program
	Attendee         Attendee
	EmergencyContact Contact
	Notes            string
	PickupCode       string // empty when none was issued
	PickedUpAt       time.Time
	PickedUpBy       string
	CheckedInAt      time.Time
}

// Kind returns "child" or "teen".
func (c *CheckIn) Kind() string {
	if c.Attendee == nil {
		return ""
	}
	return c.Attendee.attendeeKind()
}

// ChildID returns the child reference, or "" for teens.
func (c *CheckIn) ChildID() string {
	if a, ok := c.Attendee.(ChildAttendee); ok {
		return a.ChildID
	}
	return ""
}

// TeenUserID returns the teen reference, or "" for children.
func (c *CheckIn) TeenUserID() string {
	if a, ok := c.Attendee.(TeenAttendee); ok {
		return a.TeenUserID
	}
	return ""
}

// Validate checks if the CheckIn has valid data.
// PRE: CheckIn struct is populated
// POST: Returns nil if valid, error otherwise
func (c *CheckIn) Validate() error {
	if c.SessionID == "" {
		return errors.New("program check-in must reference a session")
	}
	if !c.Program.Valid() {
		return program.ErrUnknownProgram
	}
	switch a := c.Attendee.(type) {
	case ChildAttendee:
		if a.ChildID == "" {
			return failure.Validation("child is required")
		}
	case TeenAttendee:
		if a.TeenUserID == "" {
			return failure.Validation("teen is required")
		}
		if c.PickupCode != "" {
			return errors.New("teen check-ins do not carry a pickup code")
		}
	default:
		return errors.New("program check-in must have a child or teen attendee")
	}
	if c.CheckedInAt.IsZero() {
		return errors.New("checked_in_at must be set")
	}
	return nil
}

// IsPickedUp reports whether the pickup handoff happened.
// INVARIANT: CheckIn fields are not mutated
func (c *CheckIn) IsPickedUp() bool {
	return !c.PickedUpAt.IsZero()
}

// MarkPickedUp records the handoff. It can happen once.
// PRE: CheckIn carries a pickup code and is not picked up
// POST: PickedUpAt and PickedUpBy are set
func (c *CheckIn) MarkPickedUp(by string, at time.Time) error {
	if c.PickupCode == "" {
		return ErrNoPickupCode
	}
	if c.IsPickedUp() {
		return ErrAlreadyPickedUp
	}
	c.PickedUpAt = at
	c.PickedUpBy = by
	return nil
}

// Skip reports a child ID that a batch check-in did not record.
type Skip struct {
	ChildID string
	Reason  string
}
