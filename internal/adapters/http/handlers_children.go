package web

import (
	"net/http"
	"time"

	"sanctuary/internal/application/orchestrators"
	"sanctuary/internal/application/projections"
)

type childView struct {
	ID                    string   `json:"id"`
	ParentID              string   `json:"parent_id"`
	Name                  string   `json:"name"`
	DateOfBirth           string   `json:"date_of_birth"`
	Age                   int      `json:"age"`
	EligibleProgram       string   `json:"eligible_program"`
	Allergies             string   `json:"allergies,omitempty"`
	Notes                 string   `json:"notes,omitempty"`
	AuthorizedPickupNames []string `json:"authorized_pickup_names"`
}

func newChildView(c projections.ChildView) childView {
	names := c.AuthorizedPickupNames
	if names == nil {
		names = []string{}
	}
	return childView{
		ID:                    c.ID,
		ParentID:              c.ParentID,
		Name:                  c.Name,
		DateOfBirth:           c.DateOfBirth.Format(time.DateOnly),
		Age:                   c.Age,
		EligibleProgram:       string(c.EligibleProgram),
		Allergies:             c.Allergies,
		Notes:                 c.Notes,
		AuthorizedPickupNames: names,
	}
}

func childrenDeps() projections.ChildrenDeps {
	return projections.ChildrenDeps{ChildStore: stores.ChildStore, Calendar: calendar()}
}

// handleListChildren handles GET /api/children
func handleListChildren(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryListMyChildren(r.Context(), caller(r).ID, childrenDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	views := make([]childView, 0, len(list))
	for _, c := range list {
		views = append(views, newChildView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGetChild handles GET /api/children/{id}. Children of other
// households are reported as not found.
func handleGetChild(w http.ResponseWriter, r *http.Request) {
	c, err := projections.QueryGetChild(r.Context(), r.PathValue("id"), caller(r), childrenDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newChildView(c))
}

type registerChildRequest struct {
	Name                  string   `json:"name" validate:"required,max=100"`
	DateOfBirth           string   `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Allergies             string   `json:"allergies" validate:"max=1000"`
	Notes                 string   `json:"notes" validate:"max=1000"`
	AuthorizedPickupNames []string `json:"authorized_pickup_names" validate:"max=10,dive,max=100"`
}

// handleRegisterChild handles POST /api/children
// PRE: Caller is authenticated
// POST: 201 with the child, owned by the caller
func handleRegisterChild(w http.ResponseWriter, r *http.Request) {
	var req registerChildRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	dob, _ := time.Parse(time.DateOnly, req.DateOfBirth)

	c, err := orchestrators.ExecuteRegisterChild(r.Context(), orchestrators.RegisterChildInput{
		Name:                  req.Name,
		DateOfBirth:           dob,
		Allergies:             req.Allergies,
		Notes:                 req.Notes,
		AuthorizedPickupNames: req.AuthorizedPickupNames,
		Parent:                caller(r),
	}, orchestrators.RegisterChildDeps{
		ChildStore: stores.ChildStore,
		Clock:      cfg.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	on, _ := time.Parse(time.DateOnly, calendar().Today())
	writeJSON(w, http.StatusCreated, newChildView(projections.ChildView{
		Child:           c,
		Age:             c.AgeOn(on),
		EligibleProgram: c.EligibleProgramOn(on),
	}))
}
