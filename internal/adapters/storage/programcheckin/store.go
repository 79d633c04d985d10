package programcheckin

import (
	"context"
	"time"

	"sanctuary/internal/domain/code"
	domain "sanctuary/internal/domain/programcheckin"
)

// Batch is one parent's check-in request for a single program session.
type Batch struct {
	SessionID   string
	ServiceDate string
	// IssueCodes draws a pickup code for each created check-in.
	IssueCodes bool
	// CheckIns are child check-ins with IDs assigned and no pickup code.
	CheckIns []domain.CheckIn
}

// Store persists program check-ins and pickup redemptions.
type Store interface {
	// CheckInChildren inserts a batch in one transaction. Children already
	// checked in to the session are skipped.
	// PRE: every entry is a child check-in for b.SessionID
	// POST: Returns programsession.ErrNoActiveSession when the session closed
	CheckInChildren(ctx context.Context, b Batch, gen *code.Generator) (created []domain.CheckIn, skipped []domain.Skip, err error)

	// CheckInTeen inserts a teen self check-in.
	// PRE: c is a teen check-in
	// POST: Returns domain.ErrAlreadyCheckedIn on a repeat
	CheckInTeen(ctx context.Context, c domain.CheckIn) (domain.CheckIn, error)

	// RedeemPickupCode marks the single un-picked-up check-in carrying pickupCode
	// in a session dated serviceDate as picked up.
	// PRE: pickupCode is non-empty
	// POST: Returns domain.ErrInvalidPickup unless exactly one candidate matched
	// and this call performed the transition
	RedeemPickupCode(ctx context.Context, pickupCode, serviceDate, pickedUpBy string, now time.Time) (domain.CheckIn, error)

	ListBySession(ctx context.Context, sessionID string) ([]domain.CheckIn, error)
	ListByChildrenOnDate(ctx context.Context, childIDs []string, serviceDate string) ([]domain.CheckIn, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
