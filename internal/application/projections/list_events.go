package projections

import (
	"context"

	"sanctuary/internal/adapters/storage/event"
	domainEvent "sanctuary/internal/domain/event"
)

// ListEventsQuery carries query parameters.
type ListEventsQuery struct {
	Status string
	Limit  int
	Offset int
}

// ListEventsDeps holds dependencies for ListEvents.
type ListEventsDeps struct {
	EventStore EventStore
}

// QueryListEvents lists events, latest start first.
func QueryListEvents(ctx context.Context, query ListEventsQuery, deps ListEventsDeps) ([]domainEvent.Event, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	return deps.EventStore.List(ctx, event.ListFilter{Limit: limit, Offset: query.Offset, Status: query.Status})
}
