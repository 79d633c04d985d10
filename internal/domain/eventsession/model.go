// Package eventsession models the check-in window of one event. At most one
// session may be active across the whole system at any time.
package eventsession

import (
	"errors"
	"time"

	"sanctuary/internal/domain/failure"
)

// Status constants
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// Domain errors
var (
	ErrNoActiveSession      = failure.New(failure.ErrNotFound, "no active check-in session")
	ErrInvalidCode          = failure.New(failure.ErrNotFound, "invalid or expired check-in code")
	ErrNotFound             = failure.New(failure.ErrNotFound, "check-in session not found")
	ErrAnotherSessionActive = failure.New(failure.ErrConflict, "another event is already live; stop it before starting a new one")
	ErrNotActive            = errors.New("event session is not active")
)

// Session is one check-in window for one Event.
type Session struct {
	ID        string
	EventID   string
	Code      string
	Status    string
	StartedAt time.Time
	EndedAt   time.Time
	StartedBy string
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if s.EventID == "" {
		return errors.New("event session must belong to an event")
	}
	if len(s.Code) != 4 {
		return errors.New("event session code must be 4 digits")
	}
	if s.Status != StatusActive && s.Status != StatusEnded {
		return errors.New("event session status must be active or ended")
	}
	if s.StartedAt.IsZero() {
		return errors.New("started_at cannot be zero")
	}
	return nil
}

// IsActive returns true while check-ins are accepted.
// INVARIANT: Session fields are not mutated
func (s *Session) IsActive() bool {
	return s.Status == StatusActive
}

// End closes the check-in window.
// PRE: Session is active
// POST: Status is ended and EndedAt is at
func (s *Session) End(at time.Time) error {
	if !s.IsActive() {
		return ErrNotActive
	}
	s.Status = StatusEnded
	s.EndedAt = at
	return nil
}
