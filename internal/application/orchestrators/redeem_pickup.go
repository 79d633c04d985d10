package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	emailAdapter "sanctuary/internal/adapters/email"
	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
	"sanctuary/internal/domain/child"
	"sanctuary/internal/domain/code"
	"sanctuary/internal/domain/program"
	"sanctuary/internal/domain/programcheckin"
	"sanctuary/internal/domain/programsession"
)

// PickupStore defines the store interface needed by RedeemPickupCode.
type PickupStore interface {
	RedeemPickupCode(ctx context.Context, pickupCode, serviceDate, pickedUpBy string, now time.Time) (programcheckin.CheckIn, error)
}

// ChildGetter defines the store interface needed to load one child.
type ChildGetter interface {
	GetByID(ctx context.Context, id string) (child.Child, error)
}

// RedeemPickupInput carries a staff member's redemption at the pickup desk.
type RedeemPickupInput struct {
	Code string
	// PickedUpBy is the name of the adult collecting the child.
	PickedUpBy string
	Actor      account.Caller
}

// RedeemPickupResult describes the released child.
type RedeemPickupResult struct {
	CheckInID  string
	ChildID    string
	ChildName  string
	Program    program.Program
	PickedUpAt time.Time
	PickedUpBy string
	// AuthorizedPickup reports whether PickedUpBy is on the child's list.
	// It does not gate the redemption.
	AuthorizedPickup bool
}

// RedeemPickupDeps holds dependencies for RedeemPickupCode.
type RedeemPickupDeps struct {
	PickupStore PickupStore
	ChildStore  ChildGetter
	MemberStore MemberLookup
	// Sender notifies the parent. Nil disables notification.
	Sender     emailAdapter.Sender
	AuditStore AuditStore
	Clock      Clock
	Location   *time.Location
}

// ExecuteRedeemPickupCode releases the child holding a pickup code.
// PRE: Actor is staff
// POST: Exactly one check-in from today's sessions moved to picked up, or
// programcheckin.ErrInvalidPickup and nothing changed
// INVARIANT: Redemption is one-way; a code works once
func ExecuteRedeemPickupCode(ctx context.Context, input RedeemPickupInput, deps RedeemPickupDeps) (RedeemPickupResult, error) {
	if !input.Actor.IsStaff() {
		return RedeemPickupResult{}, ErrStaffOnly
	}
	pickupCode := strings.TrimSpace(input.Code)
	if !code.Valid(pickupCode) {
		return RedeemPickupResult{}, programcheckin.ErrInvalidPickup
	}
	pickedUpBy := strings.TrimSpace(input.PickedUpBy)

	now := deps.Clock.now()
	today := programsession.ServiceDate(now, deps.Location)
	c, err := deps.PickupStore.RedeemPickupCode(ctx, pickupCode, today, pickedUpBy, now)
	if err != nil {
		slog.Info("pickup_event", "event", "pickup_rejected", "service_date", today, "by", input.Actor.ID)
		return RedeemPickupResult{}, err
	}

	result := RedeemPickupResult{
		CheckInID:  c.ID,
		ChildID:    c.ChildID(),
		Program:    c.Program,
		PickedUpAt: c.PickedUpAt,
		PickedUpBy: c.PickedUpBy,
	}

	kid, kidErr := deps.ChildStore.GetByID(ctx, c.ChildID())
	if kidErr != nil {
		slog.Warn("pickup_event", "event", "child_lookup_failed", "child_id", c.ChildID(), "error", kidErr)
	} else {
		result.ChildName = kid.Name
		result.AuthorizedPickup = kid.IsAuthorizedPickup(pickedUpBy)
	}

	slog.Info("pickup_event", "event", "child_picked_up", "checkin_id", c.ID, "child_id", result.ChildID,
		"program", c.Program, "authorized", result.AuthorizedPickup, "by", input.Actor.ID)
	recordAudit(ctx, deps.AuditStore, newAudit(input.Actor, audit.CategoryPickup, audit.ActionRedeem, now).
		WithResource("program_checkin", c.ID).
		WithDescription(fmt.Sprintf("collected by %q, authorized=%t", pickedUpBy, result.AuthorizedPickup)))

	if kidErr == nil {
		notifyParent(ctx, deps, kid, result)
	}
	return result, nil
}

// notifyParent emails the child's parent. Failures are logged only.
func notifyParent(ctx context.Context, deps RedeemPickupDeps, kid child.Child, r RedeemPickupResult) {
	if deps.Sender == nil || deps.MemberStore == nil {
		return
	}
	parent, err := deps.MemberStore.GetByID(ctx, kid.ParentID)
	if err != nil || parent.Email == "" {
		slog.Info("email_event", "event", "pickup_notice_skipped", "parent_id", kid.ParentID, "reason", "no_email")
		return
	}

	req, err := emailAdapter.NewMarkdownRequest([]string{parent.Email}, kid.Name+" has been picked up", pickupNotice(kid, r, deps.Location))
	if err != nil {
		slog.Warn("email_event", "event", "pickup_notice_failed", "parent_id", kid.ParentID, "error", err)
		return
	}
	if _, err := deps.Sender.Send(ctx, req); err != nil {
		slog.Warn("email_event", "event", "pickup_notice_failed", "parent_id", kid.ParentID, "error", err)
		return
	}
	slog.Info("email_event", "event", "pickup_notice_sent", "parent_id", kid.ParentID, "checkin_id", r.CheckInID)
}

func pickupNotice(kid child.Child, r RedeemPickupResult, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Kia ora,\n\n**%s** was picked up from %s at %s.\n\n", kid.Name, r.Program, r.PickedUpAt.In(loc).Format("3:04 PM"))
	if r.PickedUpBy != "" {
		fmt.Fprintf(&b, "Collected by: %s\n\n", r.PickedUpBy)
	}
	if !r.AuthorizedPickup {
		b.WriteString("_This person is not on your authorized pickup list._\n\n")
	}
	b.WriteString("If you did not expect this, please contact the kids ministry team straight away.\n")
	return b.String()
}
