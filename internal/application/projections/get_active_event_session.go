package projections

import (
	"context"

	domainEventSession "sanctuary/internal/domain/eventsession"
)

// GetActiveEventSessionDeps holds dependencies for GetActiveEventSession.
type GetActiveEventSessionDeps struct {
	SessionStore EventSessionStore
}

// QueryGetActiveEventSession returns the system-wide active session.
// PRE: none
// POST: Returns nil when no session is active
func QueryGetActiveEventSession(ctx context.Context, deps GetActiveEventSessionDeps) (*domainEventSession.Session, error) {
	return deps.SessionStore.GetActive(ctx)
}
