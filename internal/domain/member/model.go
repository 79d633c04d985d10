package member

import (
	"strings"
	"time"

	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/program"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Domain errors
var (
	ErrNotFound = failure.New(failure.ErrNotFound, "member not found")
)

// Member is the profile behind an account: display name, contact details and
// the birthday teen check-in reads. A profile shares its ID with its account.
type Member struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Birthday time.Time // zero when unknown
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return failure.Validation("member name cannot be empty")
	}
	if len(m.Name) > MaxNameLength {
		return failure.Validation("member name cannot exceed 100 characters")
	}
	if !strings.Contains(m.Email, "@") {
		return failure.Validation("member email must be valid")
	}
	return nil
}

// HasBirthday reports whether a birthday is on file.
func (m *Member) HasBirthday() bool {
	return !m.Birthday.IsZero()
}

// AgeOn returns the member's age in completed years on day.
// PRE: HasBirthday is true
func (m *Member) AgeOn(day time.Time) int {
	return program.AgeOn(m.Birthday, day)
}
