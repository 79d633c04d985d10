package eventsession

import (
	"context"
	"time"

	"sanctuary/internal/domain/code"
	domain "sanctuary/internal/domain/eventsession"
)

// Store persists event check-in sessions. Start and StopForEvent each run as
// one IMMEDIATE transaction covering the event row and the session rows.
type Store interface {
	// Start activates a check-in session for eventID.
	// PRE: eventID is non-empty
	// POST: Returns the active session for eventID; created is false when it
	// was already active. Fails with event.ErrNotFound or
	// domain.ErrAnotherSessionActive.
	Start(ctx context.Context, eventID, startedBy string, now time.Time, gen *code.Generator) (session domain.Session, created bool, err error)

	// StopForEvent ends every active session of eventID and marks the
	// event completed.
	// PRE: eventID is non-empty
	// POST: Returns the sessions that were ended, possibly none. Fails with
	// event.ErrNotFound.
	StopForEvent(ctx context.Context, eventID string, now time.Time) ([]domain.Session, error)

	GetActive(ctx context.Context) (*domain.Session, error)
	GetByID(ctx context.Context, id string) (domain.Session, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
