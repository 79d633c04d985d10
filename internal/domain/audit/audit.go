// Package audit defines the structured events check-in operations emit.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups events by the subsystem that emitted them.
type Category string

const (
	CategoryEventSession   Category = "event_session"
	CategoryCheckIn        Category = "checkin"
	CategoryProgramSession Category = "program_session"
	CategoryProgramCheckIn Category = "program_checkin"
	CategoryPickup         Category = "pickup"
	CategoryAccount        Category = "account"
)

// Action represents the action that occurred.
type Action string

const (
	ActionStart  Action = "start"
	ActionStop   Action = "stop"
	ActionOpen   Action = "open"
	ActionClose  Action = "close"
	ActionCreate Action = "create"
	ActionRedeem Action = "redeem"
	ActionLogin  Action = "login"
)

// Event is a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	ActorID      string    `json:"actor_id"`
	ActorRole    string    `json:"actor_role"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Description  string    `json:"description"`
	Metadata     string    `json:"metadata"`
}

// NewEvent creates an audit event stamped at now.
// PRE: category and action are non-empty
// POST: Returns an Event with a fresh ID
func NewEvent(actorID, actorRole string, category Category, action Action, now time.Time) Event {
	return Event{
		ID:        uuid.New().String(),
		Timestamp: now,
		Category:  category,
		Action:    action,
		ActorID:   actorID,
		ActorRole: actorRole,
	}
}

// WithResource sets resource information.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithMetadata sets optional JSON metadata.
// PRE: metadata is valid JSON or empty
func (e Event) WithMetadata(metadata string) Event {
	e.Metadata = metadata
	return e
}
