package projections

import (
	"context"
	"time"

	"sanctuary/internal/domain/program"
	domainProgramCheckIn "sanctuary/internal/domain/programcheckin"
	domainProgramSession "sanctuary/internal/domain/programsession"
)

// GetProgramRosterQuery carries query parameters.
type GetProgramRosterQuery struct {
	Program string
	Date    string // Optional YYYY-MM-DD, defaults to today
}

// ProgramRosterEntry is one child or teen in the room. The pickup code itself
// stays with the parent; staff see only whether one was issued.
type ProgramRosterEntry struct {
	CheckInID        string
	Kind             string
	PersonID         string
	Name             string
	Age              int
	Allergies        string
	Notes            string
	EmergencyContact domainProgramCheckIn.Contact
	HasPickupCode    bool
	PickedUp         bool
	PickedUpAt       time.Time
	PickedUpBy       string
	CheckedInAt      time.Time
}

// GetProgramRosterResult carries the query result.
type GetProgramRosterResult struct {
	Session  domainProgramSession.Session
	Entries  []ProgramRosterEntry
	Present  int
	PickedUp int
}

// GetProgramRosterDeps holds dependencies for GetProgramRoster.
type GetProgramRosterDeps struct {
	SessionStore ProgramSessionStore
	CheckInStore ProgramCheckInStore
	ChildStore   ChildStore
	MemberStore  MemberStore
	Calendar     Calendar
}

// QueryGetProgramRoster lists who is checked in to one program on one day.
// PRE: Program is valid; Date is empty or YYYY-MM-DD
// POST: Present counts children not yet picked up plus teens
func QueryGetProgramRoster(ctx context.Context, query GetProgramRosterQuery, deps GetProgramRosterDeps) (GetProgramRosterResult, error) {
	p, err := program.Parse(query.Program)
	if err != nil {
		return GetProgramRosterResult{}, err
	}
	serviceDate := query.Date
	if serviceDate == "" {
		serviceDate = deps.Calendar.Today()
	}

	session, err := deps.SessionStore.Get(ctx, p, serviceDate)
	if err != nil {
		return GetProgramRosterResult{}, err
	}
	checkIns, err := deps.CheckInStore.ListBySession(ctx, session.ID)
	if err != nil {
		return GetProgramRosterResult{}, err
	}

	var childIDs, teenIDs []string
	for i := range checkIns {
		if id := checkIns[i].ChildID(); id != "" {
			childIDs = append(childIDs, id)
		} else if id := checkIns[i].TeenUserID(); id != "" {
			teenIDs = append(teenIDs, id)
		}
	}
	children, err := deps.ChildStore.ListByIDs(ctx, childIDs)
	if err != nil {
		return GetProgramRosterResult{}, err
	}
	teens, err := deps.MemberStore.ListByIDs(ctx, teenIDs)
	if err != nil {
		return GetProgramRosterResult{}, err
	}

	on := day(serviceDate)
	result := GetProgramRosterResult{Session: session, Entries: make([]ProgramRosterEntry, 0, len(checkIns))}
	for i := range checkIns {
		c := &checkIns[i]
		entry := ProgramRosterEntry{
			CheckInID:        c.ID,
			Kind:             c.Kind(),
			EmergencyContact: c.EmergencyContact,
			Notes:            c.Notes,
			HasPickupCode:    c.PickupCode != "",
			PickedUp:         c.IsPickedUp(),
			PickedUpAt:       c.PickedUpAt,
			PickedUpBy:       c.PickedUpBy,
			CheckedInAt:      c.CheckedInAt,
		}
		switch c.Kind() {
		case domainProgramCheckIn.KindChild:
			entry.PersonID = c.ChildID()
			if kid, ok := children[entry.PersonID]; ok {
				entry.Name = kid.Name
				entry.Age = kid.AgeOn(on)
				entry.Allergies = kid.Allergies
				if entry.Notes == "" {
					entry.Notes = kid.Notes
				}
			}
		case domainProgramCheckIn.KindTeen:
			entry.PersonID = c.TeenUserID()
			if m, ok := teens[entry.PersonID]; ok {
				entry.Name = m.Name
				entry.Age = m.AgeOn(on)
			}
		}
		if entry.PickedUp {
			result.PickedUp++
		} else {
			result.Present++
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}
