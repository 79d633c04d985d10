package programsession

import (
	"context"
	"time"

	"sanctuary/internal/domain/program"
	domain "sanctuary/internal/domain/programsession"
)

// Store persists per-program daily sessions. Open is a single upsert
// statement. Close runs the domain transition inside one IMMEDIATE
// transaction guarded by a conditional update.
type Store interface {
	// Open upserts the (p, serviceDate) session to active.
	// PRE: p is valid; serviceDate is YYYY-MM-DD
	// POST: Exactly one row exists for (p, serviceDate) and it is active
	Open(ctx context.Context, p program.Program, serviceDate, openedBy string, now time.Time) (domain.Session, error)

	// Close deactivates the (p, serviceDate) session.
	// PRE: p is valid
	// POST: Returns domain.ErrNoActiveSession when it was not active
	Close(ctx context.Context, p program.Program, serviceDate, closedBy string, now time.Time) (domain.Session, error)

	Get(ctx context.Context, p program.Program, serviceDate string) (domain.Session, error)
	ListByDate(ctx context.Context, serviceDate string) ([]domain.Session, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
