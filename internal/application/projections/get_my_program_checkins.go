package projections

import (
	"context"
	"time"

	"sanctuary/internal/domain/program"
)

// GetMyProgramCheckInsQuery carries query parameters.
type GetMyProgramCheckInsQuery struct {
	ParentID string
}

// MyProgramCheckIn is one of the parent's children checked in today.
type MyProgramCheckIn struct {
	CheckInID   string
	ChildID     string
	ChildName   string
	Program     program.Program
	PickupCode  string
	CheckedInAt time.Time
	PickedUp    bool
	PickedUpAt  time.Time
}

// GetMyProgramCheckInsDeps holds dependencies for GetMyProgramCheckIns.
type GetMyProgramCheckInsDeps struct {
	ChildStore   ChildStore
	CheckInStore ProgramCheckInStore
	Calendar     Calendar
}

// QueryGetMyProgramCheckIns returns today's check-ins for the parent's
// children, with the pickup codes the parent presents at collection.
// PRE: ParentID is the authenticated caller
// POST: Only children owned by ParentID appear
func QueryGetMyProgramCheckIns(ctx context.Context, query GetMyProgramCheckInsQuery, deps GetMyProgramCheckInsDeps) ([]MyProgramCheckIn, error) {
	children, err := deps.ChildStore.ListByParent(ctx, query.ParentID)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return []MyProgramCheckIn{}, nil
	}
	names := make(map[string]string, len(children))
	ids := make([]string, 0, len(children))
	for _, c := range children {
		names[c.ID] = c.Name
		ids = append(ids, c.ID)
	}

	checkIns, err := deps.CheckInStore.ListByChildrenOnDate(ctx, ids, deps.Calendar.Today())
	if err != nil {
		return nil, err
	}
	out := make([]MyProgramCheckIn, 0, len(checkIns))
	for i := range checkIns {
		c := &checkIns[i]
		out = append(out, MyProgramCheckIn{
			CheckInID:   c.ID,
			ChildID:     c.ChildID(),
			ChildName:   names[c.ChildID()],
			Program:     c.Program,
			PickupCode:  c.PickupCode,
			CheckedInAt: c.CheckedInAt,
			PickedUp:    c.IsPickedUp(),
			PickedUpAt:  c.PickedUpAt,
		})
	}
	return out, nil
}
