package projections

import (
	"context"

	"sanctuary/internal/domain/program"
	domainProgramSession "sanctuary/internal/domain/programsession"
)

// GetActiveProgramSessionsDeps holds dependencies for GetActiveProgramSessions.
type GetActiveProgramSessionsDeps struct {
	SessionStore ProgramSessionStore
	Calendar     Calendar
}

// QueryGetActiveProgramSessions reports today's active session per program.
// PRE: none
// POST: Every program has a key; the value is nil unless that program is open today
func QueryGetActiveProgramSessions(ctx context.Context, deps GetActiveProgramSessionsDeps) (map[program.Program]*domainProgramSession.Session, error) {
	sessions, err := deps.SessionStore.ListByDate(ctx, deps.Calendar.Today())
	if err != nil {
		return nil, err
	}
	out := make(map[program.Program]*domainProgramSession.Session, len(program.All))
	for _, p := range program.All {
		out[p] = nil
	}
	for i := range sessions {
		if sessions[i].IsActive() {
			out[sessions[i].Program] = &sessions[i]
		}
	}
	return out, nil
}
