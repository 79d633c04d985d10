package web

import (
	"net/http"

	"sanctuary/internal/application/listutil"
	"sanctuary/internal/application/projections"
	auditDomain "sanctuary/internal/domain/audit"
)

// handleListAudit handles GET /api/audit
// PRE: Caller is staff
// POST: Returns recent audit events, newest first, with optional filters
func handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := listutil.ParseLimit(q, projections.DefaultAuditLimit, 1000)
	filters := listutil.ParseFilters(q, "category", "action", "actor_id")

	events, err := projections.QueryListAuditEvents(r.Context(), projections.ListAuditEventsQuery{
		Category: filters["category"],
		Action:   filters["action"],
		ActorID:  filters["actor_id"],
		Limit:    limit,
	}, projections.ListAuditEventsDeps{AuditStore: stores.AuditStore})
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
