package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
)

// AuditStore persists audit events.
type AuditStore interface {
	Save(ctx context.Context, e audit.Event) error
}

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// recordAudit writes e when a store is configured. A failed write is logged
// and never fails the calling operation.
func recordAudit(ctx context.Context, store AuditStore, e audit.Event) {
	if store == nil {
		return
	}
	if err := store.Save(ctx, e); err != nil {
		slog.Warn("audit_event", "event", "audit_write_failed", "category", e.Category, "action", e.Action, "error", err)
	}
}

func newAudit(actor account.Caller, category audit.Category, action audit.Action, at time.Time) audit.Event {
	return audit.NewEvent(actor.ID, actor.Role, category, action, at)
}
