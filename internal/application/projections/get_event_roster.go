package projections

import (
	"context"
	"time"

	domainCheckIn "sanctuary/internal/domain/checkin"
	domainEventSession "sanctuary/internal/domain/eventsession"
)

// GetEventRosterQuery carries query parameters.
type GetEventRosterQuery struct {
	SessionID string // Optional, defaults to the active session
}

// EventRosterEntry is one attendance line.
type EventRosterEntry struct {
	CheckInID     string
	Type          string
	MemberID      string
	Name          string
	Phone         string
	Email         string
	FirstTime     bool
	ContactOK     bool
	ChildrenCount int
	PrayerRequest string
	CreatedAt     time.Time
}

// EventRosterTotals summarises a roster.
type EventRosterTotals struct {
	Total           int
	Members         int
	Guests          int
	FirstTimeGuests int
	Children        int
}

// GetEventRosterResult carries the query result.
type GetEventRosterResult struct {
	Session    domainEventSession.Session
	EventTitle string
	Entries    []EventRosterEntry
	Totals     EventRosterTotals
}

// GetEventRosterDeps holds dependencies for GetEventRoster.
type GetEventRosterDeps struct {
	SessionStore EventSessionStore
	CheckInStore CheckInStore
	MemberStore  MemberStore
	EventStore   EventStore // optional: nil skips the title
}

// QueryGetEventRoster lists a session's check-ins with member names resolved.
// PRE: SessionID names a session, or one session is active
// POST: Entries in check-in order; NotFound when no session matches
func QueryGetEventRoster(ctx context.Context, query GetEventRosterQuery, deps GetEventRosterDeps) (GetEventRosterResult, error) {
	var session domainEventSession.Session
	if query.SessionID == "" {
		active, err := deps.SessionStore.GetActive(ctx)
		if err != nil {
			return GetEventRosterResult{}, err
		}
		if active == nil {
			return GetEventRosterResult{}, domainEventSession.ErrNoActiveSession
		}
		session = *active
	} else {
		s, err := deps.SessionStore.GetByID(ctx, query.SessionID)
		if err != nil {
			return GetEventRosterResult{}, err
		}
		session = s
	}

	checkIns, err := deps.CheckInStore.ListBySession(ctx, session.ID)
	if err != nil {
		return GetEventRosterResult{}, err
	}

	var memberIDs []string
	for i := range checkIns {
		if id := checkIns[i].MemberID(); id != "" {
			memberIDs = append(memberIDs, id)
		}
	}
	members, err := deps.MemberStore.ListByIDs(ctx, memberIDs)
	if err != nil {
		return GetEventRosterResult{}, err
	}

	result := GetEventRosterResult{Session: session, Entries: make([]EventRosterEntry, 0, len(checkIns))}
	if deps.EventStore != nil {
		if e, err := deps.EventStore.GetByID(ctx, session.EventID); err == nil {
			result.EventTitle = e.Title
		}
	}

	for i := range checkIns {
		c := &checkIns[i]
		entry := EventRosterEntry{
			CheckInID:     c.ID,
			Type:          c.Type(),
			FirstTime:     c.FirstTime,
			ContactOK:     c.ContactOK,
			ChildrenCount: c.ChildrenCount,
			PrayerRequest: c.PrayerRequest,
			CreatedAt:     c.CreatedAt,
		}
		switch c.Type() {
		case domainCheckIn.TypeMember:
			entry.MemberID = c.MemberID()
			if m, ok := members[entry.MemberID]; ok {
				entry.Name = m.Name
				entry.Phone = m.Phone
				entry.Email = m.Email
			}
			result.Totals.Members++
		case domainCheckIn.TypeGuest:
			g, _ := c.Guest()
			entry.Name = g.FullName()
			entry.Phone = g.Phone
			entry.Email = g.Email
			result.Totals.Guests++
			if c.FirstTime {
				result.Totals.FirstTimeGuests++
			}
		}
		result.Totals.Children += c.ChildrenCount
		result.Entries = append(result.Entries, entry)
	}
	result.Totals.Total = len(result.Entries)
	return result, nil
}
