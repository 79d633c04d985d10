package web

import (
	"net/http"
	"time"

	"sanctuary/internal/adapters/export"
	"sanctuary/internal/application/orchestrators"
	"sanctuary/internal/application/projections"
	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/programcheckin"
	"sanctuary/internal/domain/programsession"
)

type programSessionView struct {
	ID          string     `json:"id"`
	Program     string     `json:"program"`
	ServiceDate string     `json:"service_date"`
	Status      string     `json:"status"`
	OpenedAt    time.Time  `json:"opened_at"`
	OpenedBy    string     `json:"opened_by"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ClosedBy    string     `json:"closed_by,omitempty"`
}

func newProgramSessionView(s programsession.Session) programSessionView {
	v := programSessionView{
		ID:          s.ID,
		Program:     string(s.Program),
		ServiceDate: s.ServiceDate,
		Status:      s.Status,
		OpenedAt:    s.OpenedAt,
		OpenedBy:    s.OpenedBy,
		ClosedBy:    s.ClosedBy,
	}
	if !s.ClosedAt.IsZero() {
		v.ClosedAt = &s.ClosedAt
	}
	return v
}

func programSessionDeps() orchestrators.ProgramSessionDeps {
	return orchestrators.ProgramSessionDeps{
		SessionStore: stores.ProgramSessionStore,
		AuditStore:   stores.AuditStore,
		Clock:        cfg.Clock,
		Location:     cfg.Location,
	}
}

// handleOpenProgram handles POST /api/programs/{program}/open
// PRE: Caller is staff
// POST: Today's session for the program is active; repeat opens are harmless
func handleOpenProgram(w http.ResponseWriter, r *http.Request) {
	s, err := orchestrators.ExecuteOpenProgramSession(r.Context(), orchestrators.ProgramSessionInput{
		Program: r.PathValue("program"),
		Actor:   caller(r),
	}, programSessionDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgramSessionView(s))
}

// handleCloseProgram handles POST /api/programs/{program}/close
func handleCloseProgram(w http.ResponseWriter, r *http.Request) {
	s, err := orchestrators.ExecuteCloseProgramSession(r.Context(), orchestrators.ProgramSessionInput{
		Program: r.PathValue("program"),
		Actor:   caller(r),
	}, programSessionDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgramSessionView(s))
}

// handleActivePrograms handles GET /api/programs/active.
// Every program appears; closed or unopened programs map to null.
func handleActivePrograms(w http.ResponseWriter, r *http.Request) {
	active, err := projections.QueryGetActiveProgramSessions(r.Context(), projections.GetActiveProgramSessionsDeps{
		SessionStore: stores.ProgramSessionStore,
		Calendar:     calendar(),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	out := make(map[string]*programSessionView, len(active))
	for p, s := range active {
		if s == nil {
			out[string(p)] = nil
			continue
		}
		v := newProgramSessionView(*s)
		out[string(p)] = &v
	}
	writeJSON(w, http.StatusOK, out)
}

type contactRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"required,max=30"`
}

type checkInChildrenRequest struct {
	ChildIDs         []string       `json:"child_ids" validate:"required,min=1,max=20,dive,required"`
	EmergencyContact contactRequest `json:"emergency_contact"`
	Notes            string         `json:"notes" validate:"max=1000"`
}

type programCheckInView struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Program     string    `json:"program"`
	Kind        string    `json:"kind"`
	ChildID     string    `json:"child_id,omitempty"`
	TeenUserID  string    `json:"teen_user_id,omitempty"`
	PickupCode  string    `json:"pickup_code,omitempty"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

func newProgramCheckInView(c programcheckin.CheckIn) programCheckInView {
	return programCheckInView{
		ID:          c.ID,
		SessionID:   c.SessionID,
		Program:     string(c.Program),
		Kind:        c.Kind(),
		ChildID:     c.ChildID(),
		TeenUserID:  c.TeenUserID(),
		PickupCode:  c.PickupCode,
		CheckedInAt: c.CheckedInAt,
	}
}

type skipView struct {
	ChildID string `json:"child_id"`
	Reason  string `json:"reason"`
}

type checkInChildrenView struct {
	Created []programCheckInView `json:"created"`
	Skipped []skipView           `json:"skipped"`
}

// handleCheckInChildren handles POST /api/programs/{program}/checkin
// PRE: Caller is the parent
// POST: 201 with the created check-ins (and their pickup codes) plus skips;
// a request where every child was skipped still succeeds
func handleCheckInChildren(w http.ResponseWriter, r *http.Request) {
	var req checkInChildrenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := orchestrators.ExecuteCheckInChildren(r.Context(), orchestrators.CheckInChildrenInput{
		Program:  r.PathValue("program"),
		ChildIDs: req.ChildIDs,
		Parent:   caller(r),
		EmergencyContact: programcheckin.Contact{
			Name:  req.EmergencyContact.Name,
			Phone: req.EmergencyContact.Phone,
		},
		Notes: req.Notes,
	}, orchestrators.CheckInChildrenDeps{
		SessionStore:     stores.ProgramSessionStore,
		ChildStore:       stores.ChildStore,
		CheckInStore:     stores.ProgramCheckInStore,
		Generator:        cfg.Generator,
		YouthPickupCodes: cfg.YouthPickupCodes,
		AuditStore:       stores.AuditStore,
		Clock:            cfg.Clock,
		Location:         cfg.Location,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	view := checkInChildrenView{
		Created: make([]programCheckInView, 0, len(result.Created)),
		Skipped: make([]skipView, 0, len(result.Skipped)),
	}
	for _, c := range result.Created {
		view.Created = append(view.Created, newProgramCheckInView(c))
	}
	for _, s := range result.Skipped {
		view.Skipped = append(view.Skipped, skipView(s))
	}
	writeJSON(w, http.StatusCreated, view)
}

// handleTeenCheckIn handles POST /api/programs/teen/checkin/self
func handleTeenCheckIn(w http.ResponseWriter, r *http.Request) {
	c, err := orchestrators.ExecuteCheckInTeen(r.Context(), orchestrators.CheckInTeenInput{
		Teen: caller(r),
	}, orchestrators.CheckInTeenDeps{
		MemberStore:  stores.MemberStore,
		SessionStore: stores.ProgramSessionStore,
		CheckInStore: stores.ProgramCheckInStore,
		AuditStore:   stores.AuditStore,
		Clock:        cfg.Clock,
		Location:     cfg.Location,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProgramCheckInView(c))
}

type myCheckInView struct {
	CheckInID   string     `json:"checkin_id"`
	ChildID     string     `json:"child_id"`
	ChildName   string     `json:"child_name"`
	Program     string     `json:"program"`
	PickupCode  string     `json:"pickup_code,omitempty"`
	CheckedInAt time.Time  `json:"checked_in_at"`
	PickedUp    bool       `json:"picked_up"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
}

// handleMyProgramCheckIns handles GET /api/programs/mine
func handleMyProgramCheckIns(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryGetMyProgramCheckIns(r.Context(), projections.GetMyProgramCheckInsQuery{
		ParentID: caller(r).ID,
	}, projections.GetMyProgramCheckInsDeps{
		ChildStore:   stores.ChildStore,
		CheckInStore: stores.ProgramCheckInStore,
		Calendar:     calendar(),
	})
	if err != nil {
		internalError(w, err)
		return
	}

	views := make([]myCheckInView, 0, len(list))
	for _, c := range list {
		v := myCheckInView{
			CheckInID:   c.CheckInID,
			ChildID:     c.ChildID,
			ChildName:   c.ChildName,
			Program:     string(c.Program),
			PickupCode:  c.PickupCode,
			CheckedInAt: c.CheckedInAt,
			PickedUp:    c.PickedUp,
		}
		if c.PickedUp {
			at := c.PickedUpAt
			v.PickedUpAt = &at
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

type programRosterEntryView struct {
	CheckInID      string     `json:"checkin_id"`
	Kind           string     `json:"kind"`
	PersonID       string     `json:"person_id"`
	Name           string     `json:"name"`
	Age            int        `json:"age"`
	Allergies      string     `json:"allergies,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	EmergencyName  string     `json:"emergency_contact_name,omitempty"`
	EmergencyPhone string     `json:"emergency_contact_phone,omitempty"`
	HasPickupCode  bool       `json:"has_pickup_code"`
	PickedUp       bool       `json:"picked_up"`
	PickedUpAt     *time.Time `json:"picked_up_at,omitempty"`
	PickedUpBy     string     `json:"picked_up_by,omitempty"`
	CheckedInAt    time.Time  `json:"checked_in_at"`
}

type programRosterView struct {
	Session  programSessionView       `json:"session"`
	Entries  []programRosterEntryView `json:"entries"`
	Present  int                      `json:"present"`
	PickedUp int                      `json:"picked_up"`
}

func loadProgramRoster(r *http.Request) (projections.GetProgramRosterResult, error) {
	return projections.QueryGetProgramRoster(r.Context(), projections.GetProgramRosterQuery{
		Program: r.PathValue("program"),
		Date:    r.URL.Query().Get("date"),
	}, projections.GetProgramRosterDeps{
		SessionStore: stores.ProgramSessionStore,
		CheckInStore: stores.ProgramCheckInStore,
		ChildStore:   stores.ChildStore,
		MemberStore:  stores.MemberStore,
		Calendar:     calendar(),
	})
}

// handleProgramRoster handles GET /api/programs/{program}/roster?date=YYYY-MM-DD
func handleProgramRoster(w http.ResponseWriter, r *http.Request) {
	if !validDateParam(w, r) {
		return
	}
	result, err := loadProgramRoster(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view := programRosterView{
		Session:  newProgramSessionView(result.Session),
		Entries:  make([]programRosterEntryView, 0, len(result.Entries)),
		Present:  result.Present,
		PickedUp: result.PickedUp,
	}
	for _, e := range result.Entries {
		v := programRosterEntryView{
			CheckInID:      e.CheckInID,
			Kind:           e.Kind,
			PersonID:       e.PersonID,
			Name:           e.Name,
			Age:            e.Age,
			Allergies:      e.Allergies,
			Notes:          e.Notes,
			EmergencyName:  e.EmergencyContact.Name,
			EmergencyPhone: e.EmergencyContact.Phone,
			HasPickupCode:  e.HasPickupCode,
			PickedUp:       e.PickedUp,
			PickedUpBy:     e.PickedUpBy,
			CheckedInAt:    e.CheckedInAt,
		}
		if e.PickedUp {
			at := e.PickedUpAt
			v.PickedUpAt = &at
		}
		view.Entries = append(view.Entries, v)
	}
	writeJSON(w, http.StatusOK, view)
}

// handleProgramRosterXLSX handles GET /api/programs/{program}/roster.xlsx
func handleProgramRosterXLSX(w http.ResponseWriter, r *http.Request) {
	if !validDateParam(w, r) {
		return
	}
	result, err := loadProgramRoster(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := export.ProgramRoster(result, cfg.Location)
	if err != nil {
		internalError(w, err)
		return
	}
	writeXLSX(w, string(result.Session.Program)+"-"+result.Session.ServiceDate+".xlsx", data)
}

// validDateParam rejects a malformed ?date= with 400.
func validDateParam(w http.ResponseWriter, r *http.Request) bool {
	d := r.URL.Query().Get("date")
	if d == "" {
		return true
	}
	if _, err := time.Parse(programsession.DateLayout, d); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: failure.KindValidation, Message: "date must be YYYY-MM-DD"})
		return false
	}
	return true
}

type redeemRequest struct {
	Code       string `json:"code" validate:"required,len=4,numeric"`
	PickedUpBy string `json:"picked_up_by" validate:"required,max=100"`
}

type redeemView struct {
	CheckInID        string    `json:"checkin_id"`
	ChildID          string    `json:"child_id"`
	ChildName        string    `json:"child_name"`
	Program          string    `json:"program"`
	PickedUpAt       time.Time `json:"picked_up_at"`
	PickedUpBy       string    `json:"picked_up_by"`
	AuthorizedPickup bool      `json:"authorized_pickup"`
}

// handleRedeemPickup handles POST /api/pickup/redeem
// PRE: Caller is staff
// POST: 200 with the released child; 404 for an unknown, ambiguous or spent code
func handleRedeemPickup(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := orchestrators.ExecuteRedeemPickupCode(r.Context(), orchestrators.RedeemPickupInput{
		Code:       req.Code,
		PickedUpBy: req.PickedUpBy,
		Actor:      caller(r),
	}, orchestrators.RedeemPickupDeps{
		PickupStore: stores.ProgramCheckInStore,
		ChildStore:  stores.ChildStore,
		MemberStore: stores.MemberStore,
		Sender:      cfg.Sender,
		AuditStore:  stores.AuditStore,
		Clock:       cfg.Clock,
		Location:    cfg.Location,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redeemView{
		CheckInID:        result.CheckInID,
		ChildID:          result.ChildID,
		ChildName:        result.ChildName,
		Program:          string(result.Program),
		PickedUpAt:       result.PickedUpAt,
		PickedUpBy:       result.PickedUpBy,
		AuthorizedPickup: result.AuthorizedPickup,
	})
}
