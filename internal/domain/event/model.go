package event

import (
	"errors"
	"strings"
	"time"

	"sanctuary/internal/domain/failure"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength = 200
)

// Status constants. live and completed are markers driven by the event's
// check-in session.
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusCompleted = "completed"
)

// Domain errors
var (
	ErrNotFound   = failure.New(failure.ErrNotFound, "event not found")
	ErrEmptyTitle = failure.Validation("event title cannot be empty")
)

// Event is a congregational gathering people check in to.
type Event struct {
	ID        string
	Title     string
	StartsAt  time.Time
	Status    string
	CreatedBy string
	CreatedAt time.Time
}

// Validate checks if the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > MaxTitleLength {
		return failure.Validation("event title cannot exceed 200 characters")
	}
	switch e.Status {
	case StatusScheduled, StatusLive, StatusCompleted:
	default:
		return failure.Validation("event status must be scheduled, live, or completed")
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}

// IsLive reports whether check-in is currently open for the event.
func (e *Event) IsLive() bool {
	return e.Status == StatusLive
}
