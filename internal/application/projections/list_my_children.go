package projections

import (
	"context"

	"sanctuary/internal/domain/account"
	domainChild "sanctuary/internal/domain/child"
	"sanctuary/internal/domain/program"
)

// ChildView is a child with the program its age routes to today.
type ChildView struct {
	domainChild.Child
	Age             int
	EligibleProgram program.Program
}

// ChildrenDeps holds dependencies for the child queries.
type ChildrenDeps struct {
	ChildStore ChildStore
	Calendar   Calendar
}

// QueryListMyChildren lists the caller's children.
// PRE: ParentID is the authenticated caller
func QueryListMyChildren(ctx context.Context, parentID string, deps ChildrenDeps) ([]ChildView, error) {
	children, err := deps.ChildStore.ListByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	on := day(deps.Calendar.Today())
	out := make([]ChildView, 0, len(children))
	for _, c := range children {
		out = append(out, ChildView{Child: c, Age: c.AgeOn(on), EligibleProgram: c.EligibleProgramOn(on)})
	}
	return out, nil
}

// QueryGetChild returns one child to its parent or to staff.
// POST: Returns domainChild.ErrNotFound to anyone else
func QueryGetChild(ctx context.Context, childID string, caller account.Caller, deps ChildrenDeps) (ChildView, error) {
	c, err := deps.ChildStore.GetByID(ctx, childID)
	if err != nil {
		return ChildView{}, err
	}
	if !c.OwnedBy(caller.ID) && !caller.IsStaff() {
		return ChildView{}, domainChild.ErrNotFound
	}
	on := day(deps.Calendar.Today())
	return ChildView{Child: c, Age: c.AgeOn(on), EligibleProgram: c.EligibleProgramOn(on)}, nil
}
