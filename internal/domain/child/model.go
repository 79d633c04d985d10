package child

import (
	"strings"
	"time"

	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/program"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxNotesLength = 1000
	MaxPickupNames = 10
)

// Domain errors
var (
	ErrNotFound  = failure.New(failure.ErrNotFound, "child not found")
	ErrEmptyName = failure.Validation("child name cannot be empty")
)

// Child is a minor profile owned by a parent account.
type Child struct {
	ID                    string
	ParentID              string
	Name                  string
	DateOfBirth           time.Time
	Allergies             string
	Notes                 string
	AuthorizedPickupNames []string
	CreatedAt             time.Time
}

// Validate checks if the Child has valid data.
// PRE: Child struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Child) Validate() error {
	if c.ParentID == "" {
		return failure.Validation("child must belong to a parent")
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return failure.Validation("child name cannot exceed 100 characters")
	}
	if c.DateOfBirth.IsZero() {
		return failure.Validation("date of birth is required")
	}
	if len(c.Notes) > MaxNotesLength || len(c.Allergies) > MaxNotesLength {
		return failure.Validation("notes cannot exceed 1000 characters")
	}
	if len(c.AuthorizedPickupNames) > MaxPickupNames {
		return failure.Validation("at most 10 authorized pickup names")
	}
	return nil
}

// OwnedBy reports whether parentID owns the child.
// INVARIANT: Child fields are not mutated
func (c *Child) OwnedBy(parentID string) bool {
	return parentID != "" && c.ParentID == parentID
}

// AgeOn returns the child's age in completed years on day.
func (c *Child) AgeOn(day time.Time) int {
	return program.AgeOn(c.DateOfBirth, day)
}

// EligibleProgramOn returns the program the child's age routes to on day.
func (c *Child) EligibleProgramOn(day time.Time) program.Program {
	return program.EligibleOn(c.DateOfBirth, day)
}

// IsAuthorizedPickup reports whether name matches an authorized pickup name,
// ignoring case and surrounding space.
func (c *Child) IsAuthorizedPickup(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, n := range c.AuthorizedPickupNames {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}
