package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/child"
)

// ChildStoreForRegister defines the store interface needed by RegisterChild.
type ChildStoreForRegister interface {
	Save(ctx context.Context, c child.Child) error
}

// RegisterChildInput carries a parent's new child record.
type RegisterChildInput struct {
	Name                  string
	DateOfBirth           time.Time
	Allergies             string
	Notes                 string
	AuthorizedPickupNames []string
	Parent                account.Caller
}

// RegisterChildDeps holds dependencies for RegisterChild.
type RegisterChildDeps struct {
	ChildStore ChildStoreForRegister
	Clock      Clock
}

// ExecuteRegisterChild adds a child to the caller's household.
// PRE: Parent is the authenticated caller
// POST: Child persisted and owned by Parent
func ExecuteRegisterChild(ctx context.Context, input RegisterChildInput, deps RegisterChildDeps) (child.Child, error) {
	var names []string
	for _, n := range input.AuthorizedPickupNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	c := child.Child{
		ID:                    uuid.New().String(),
		ParentID:              input.Parent.ID,
		Name:                  strings.TrimSpace(input.Name),
		DateOfBirth:           input.DateOfBirth,
		Allergies:             strings.TrimSpace(input.Allergies),
		Notes:                 strings.TrimSpace(input.Notes),
		AuthorizedPickupNames: names,
		CreatedAt:             deps.Clock.now(),
	}
	if err := c.Validate(); err != nil {
		return child.Child{}, err
	}
	if err := deps.ChildStore.Save(ctx, c); err != nil {
		return child.Child{}, err
	}
	slog.Info("program_event", "event", "child_registered", "child_id", c.ID, "parent_id", c.ParentID)
	return c, nil
}
