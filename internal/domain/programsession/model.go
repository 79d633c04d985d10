// Package programsession models one program's operating window for one
// service date. (program, service date) identifies a session; reopening the
// same day reuses the row.
package programsession

import (
	"errors"
	"time"

	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/program"
)

// DateLayout is the storage format of service dates.
const DateLayout = "2006-01-02"

// Status constants
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Domain errors
var (
	ErrNoActiveSession = failure.New(failure.ErrNotFound, "this program is not open for check-in today")
	ErrNotFound        = failure.New(failure.ErrNotFound, "no session for that program and date")
	ErrNotActive       = errors.New("program session is not active")
)

// Session is one day's operating window for one program.
type Session struct {
	ID          string
	Program     program.Program
	ServiceDate string // YYYY-MM-DD in the church's time zone
	Status      string
	OpenedAt    time.Time
	OpenedBy    string
	ClosedAt    time.Time
	ClosedBy    string
}

// ServiceDate returns the service date containing t in loc.
func ServiceDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if !s.Program.Valid() {
		return program.ErrUnknownProgram
	}
	if _, err := time.Parse(DateLayout, s.ServiceDate); err != nil {
		return errors.New("service date must be YYYY-MM-DD")
	}
	if s.Status != StatusActive && s.Status != StatusClosed {
		return errors.New("program session status must be active or closed")
	}
	return nil
}

// IsActive returns true while the program accepts check-ins.
// INVARIANT: Session fields are not mutated
func (s *Session) IsActive() bool {
	return s.Status == StatusActive
}

// Close ends the day's window.
// PRE: Session is active
// POST: Status is closed with ClosedAt/ClosedBy set
func (s *Session) Close(by string, at time.Time) error {
	if !s.IsActive() {
		return ErrNotActive
	}
	s.Status = StatusClosed
	s.ClosedAt = at
	s.ClosedBy = by
	return nil
}
