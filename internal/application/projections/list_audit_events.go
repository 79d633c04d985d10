package projections

import (
	"context"

	"sanctuary/internal/adapters/storage/audit"
	domainAudit "sanctuary/internal/domain/audit"
)

// DefaultAuditLimit caps an unbounded audit listing.
const DefaultAuditLimit = 100

// ListAuditEventsQuery carries query parameters.
type ListAuditEventsQuery struct {
	Category string
	Action   string
	ActorID  string
	Limit    int
}

// ListAuditEventsDeps holds dependencies for ListAuditEvents.
type ListAuditEventsDeps struct {
	AuditStore AuditStore
}

// QueryListAuditEvents returns recent audit events, newest first.
func QueryListAuditEvents(ctx context.Context, query ListAuditEventsQuery, deps ListAuditEventsDeps) ([]domainAudit.Event, error) {
	var filter audit.Filter
	if query.Category != "" {
		c := domainAudit.Category(query.Category)
		filter.Category = &c
	}
	if query.Action != "" {
		a := domainAudit.Action(query.Action)
		filter.Action = &a
	}
	if query.ActorID != "" {
		filter.ActorID = &query.ActorID
	}
	limit := query.Limit
	if limit <= 0 || limit > 1000 {
		limit = DefaultAuditLimit
	}
	return deps.AuditStore.List(ctx, filter, limit)
}
