package checkin

import (
	"context"

	domain "sanctuary/internal/domain/checkin"
)

// Store persists attendance records.
type Store interface {
	// RecordByCode resolves sessionCode to the active session and inserts c
	// against it in one transaction. An empty sessionCode means the single
	// active session.
	// PRE: c.Attendee is set; c.SessionID and c.EventID are ignored
	// POST: Returns the stored check-in, eventsession.ErrInvalidCode,
	// eventsession.ErrNoActiveSession, or domain.ErrAlreadyCheckedIn
	RecordByCode(ctx context.Context, sessionCode string, c domain.CheckIn) (domain.CheckIn, error)

	ListBySession(ctx context.Context, sessionID string) ([]domain.CheckIn, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
