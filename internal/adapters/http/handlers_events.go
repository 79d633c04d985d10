package web

import (
	"net/http"
	"time"

	"sanctuary/internal/adapters/export"
	"sanctuary/internal/adapters/http/middleware"
	"sanctuary/internal/application/listutil"
	"sanctuary/internal/application/orchestrators"
	"sanctuary/internal/application/projections"
	"sanctuary/internal/domain/checkin"
	"sanctuary/internal/domain/event"
	"sanctuary/internal/domain/eventsession"
)

type eventView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	Status    string     `json:"status"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

func newEventView(e event.Event) eventView {
	v := eventView{ID: e.ID, Title: e.Title, Status: e.Status, CreatedBy: e.CreatedBy, CreatedAt: e.CreatedAt}
	if !e.StartsAt.IsZero() {
		v.StartsAt = &e.StartsAt
	}
	return v
}

// sessionView hides the code unless the viewer is staff.
type sessionView struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Code      string     `json:"code,omitempty"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	StartedBy string     `json:"started_by,omitempty"`
}

func newSessionView(s eventsession.Session, staff bool) sessionView {
	v := sessionView{ID: s.ID, EventID: s.EventID, Status: s.Status, StartedAt: s.StartedAt}
	if staff {
		v.Code = s.Code
		v.StartedBy = s.StartedBy
	}
	if !s.EndedAt.IsZero() {
		v.EndedAt = &s.EndedAt
	}
	return v
}

// handleListEvents handles GET /api/events
func handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := listutil.ParsePageParams(q)

	events, err := projections.QueryListEvents(r.Context(), projections.ListEventsQuery{
		Status: q.Get("status"),
		Limit:  page.PerPage,
		Offset: page.Offset(),
	}, projections.ListEventsDeps{EventStore: stores.EventStore})
	if err != nil {
		internalError(w, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

type createEventRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	StartsAt string `json:"starts_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// handleCreateEvent handles POST /api/events
func handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	var startsAt time.Time
	if req.StartsAt != "" {
		startsAt, _ = time.Parse(time.RFC3339, req.StartsAt)
	}

	e, err := orchestrators.ExecuteCreateEvent(r.Context(), orchestrators.CreateEventInput{
		Title:    req.Title,
		StartsAt: startsAt,
		Actor:    caller(r),
	}, orchestrators.CreateEventDeps{
		EventStore: stores.EventStore,
		Clock:      cfg.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventView(e))
}

func eventSessionDeps() orchestrators.EventSessionDeps {
	return orchestrators.EventSessionDeps{
		SessionStore: stores.EventSessionStore,
		Generator:    cfg.Generator,
		AuditStore:   stores.AuditStore,
		Clock:        cfg.Clock,
	}
}

// handleStartEventSession handles POST /api/events/{id}/session/start
// PRE: Caller is staff
// POST: 200 with the active session and its code; 409 when another event is live
func handleStartEventSession(w http.ResponseWriter, r *http.Request) {
	s, err := orchestrators.ExecuteStartEventSession(r.Context(), orchestrators.EventSessionInput{
		EventID: r.PathValue("id"),
		Actor:   caller(r),
	}, eventSessionDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s, true))
}

// handleStopEventSession handles POST /api/events/{id}/session/stop
func handleStopEventSession(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteStopEventSession(r.Context(), orchestrators.EventSessionInput{
		EventID: r.PathValue("id"),
		Actor:   caller(r),
	}, eventSessionDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleActiveEventSession handles GET /api/event-session/active.
// The response carries "session": null when nothing is live.
func handleActiveEventSession(w http.ResponseWriter, r *http.Request) {
	s, err := projections.QueryGetActiveEventSession(r.Context(), projections.GetActiveEventSessionDeps{
		SessionStore: stores.EventSessionStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if s == nil {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}
	c, _ := middleware.CallerFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"session": newSessionView(*s, c.IsStaff())})
}

type memberCheckInRequest struct {
	Code          string `json:"code" validate:"required,len=4,numeric"`
	ChildrenCount int    `json:"children_count" validate:"min=0,max=20"`
	PrayerRequest string `json:"prayer_request" validate:"max=2000"`
}

type checkInView struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func newCheckInView(c checkin.CheckIn) checkInView {
	return checkInView{ID: c.ID, SessionID: c.SessionID, EventID: c.EventID, Type: c.Type(), CreatedAt: c.CreatedAt}
}

func checkInDeps() orchestrators.CheckInDeps {
	return orchestrators.CheckInDeps{
		CheckInStore: stores.CheckInStore,
		AuditStore:   stores.AuditStore,
		Clock:        cfg.Clock,
	}
}

// handleCheckInMember handles POST /api/checkin/member
// PRE: Caller is authenticated; the member ID is the caller's
// POST: 201 on first check-in, 409 duplicate on a repeat, 404 on a bad code
func handleCheckInMember(w http.ResponseWriter, r *http.Request) {
	var req memberCheckInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := orchestrators.ExecuteCheckInMember(r.Context(), orchestrators.CheckInMemberInput{
		Code:          req.Code,
		MemberID:      caller(r).ID,
		ChildrenCount: req.ChildrenCount,
		PrayerRequest: req.PrayerRequest,
	}, checkInDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCheckInView(c))
}

type guestCheckInRequest struct {
	Code          string `json:"code" validate:"omitempty,len=4,numeric"`
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"max=100"`
	Phone         string `json:"phone" validate:"max=30"`
	Email         string `json:"email" validate:"omitempty,email"`
	FirstTime     bool   `json:"first_time"`
	ContactOK     bool   `json:"contact_ok"`
	ChildrenCount int    `json:"children_count" validate:"min=0,max=20"`
	PrayerRequest string `json:"prayer_request" validate:"max=2000"`
}

// handleCheckInGuest handles POST /api/checkin/guest. An absent code checks
// in to whichever session is live.
func handleCheckInGuest(w http.ResponseWriter, r *http.Request) {
	var req guestCheckInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := orchestrators.ExecuteCheckInGuest(r.Context(), orchestrators.CheckInGuestInput{
		Code: req.Code,
		Guest: checkin.GuestAttendee{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Email:     req.Email,
		},
		FirstTime:     req.FirstTime,
		ContactOK:     req.ContactOK,
		ChildrenCount: req.ChildrenCount,
		PrayerRequest: req.PrayerRequest,
	}, checkInDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCheckInView(c))
}

type eventRosterEntryView struct {
	CheckInID     string    `json:"checkin_id"`
	Type          string    `json:"type"`
	MemberID      string    `json:"member_id,omitempty"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	FirstTime     bool      `json:"first_time"`
	ContactOK     bool      `json:"contact_ok"`
	ChildrenCount int       `json:"children_count"`
	PrayerRequest string    `json:"prayer_request,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type eventRosterTotalsView struct {
	Total           int `json:"total"`
	Members         int `json:"members"`
	Guests          int `json:"guests"`
	FirstTimeGuests int `json:"first_time_guests"`
	Children        int `json:"children"`
}

type eventRosterView struct {
	Session    sessionView            `json:"session"`
	EventTitle string                 `json:"event_title"`
	Entries    []eventRosterEntryView `json:"entries"`
	Totals     eventRosterTotalsView  `json:"totals"`
}

// loadEventRoster resolves {id}; "active" means the live session.
func loadEventRoster(r *http.Request) (projections.GetEventRosterResult, error) {
	id := r.PathValue("id")
	if id == "active" {
		id = ""
	}
	return projections.QueryGetEventRoster(r.Context(), projections.GetEventRosterQuery{SessionID: id}, projections.GetEventRosterDeps{
		SessionStore: stores.EventSessionStore,
		CheckInStore: stores.CheckInStore,
		MemberStore:  stores.MemberStore,
		EventStore:   stores.EventStore,
	})
}

// handleEventRoster handles GET /api/event-session/{id}/roster
func handleEventRoster(w http.ResponseWriter, r *http.Request) {
	result, err := loadEventRoster(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view := eventRosterView{
		Session:    newSessionView(result.Session, true),
		EventTitle: result.EventTitle,
		Entries:    make([]eventRosterEntryView, 0, len(result.Entries)),
		Totals:     eventRosterTotalsView(result.Totals),
	}
	for _, e := range result.Entries {
		view.Entries = append(view.Entries, eventRosterEntryView(e))
	}
	writeJSON(w, http.StatusOK, view)
}

// handleEventRosterXLSX handles GET /api/event-session/{id}/roster.xlsx
func handleEventRosterXLSX(w http.ResponseWriter, r *http.Request) {
	result, err := loadEventRoster(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := export.EventRoster(result, cfg.Location)
	if err != nil {
		internalError(w, err)
		return
	}
	writeXLSX(w, "roster-"+result.Session.StartedAt.In(location()).Format(time.DateOnly)+".xlsx", data)
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func location() *time.Location {
	if cfg.Location == nil {
		return time.Local
	}
	return cfg.Location
}
