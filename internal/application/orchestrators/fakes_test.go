package orchestrators

import (
	"context"
	"errors"
	"time"

	emailAdapter "sanctuary/internal/adapters/email"
	storeProgramCheckIn "sanctuary/internal/adapters/storage/programcheckin"
	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
	"sanctuary/internal/domain/checkin"
	"sanctuary/internal/domain/child"
	"sanctuary/internal/domain/code"
	"sanctuary/internal/domain/member"
	"sanctuary/internal/domain/program"
	"sanctuary/internal/domain/programcheckin"
	"sanctuary/internal/domain/programsession"
)

// --- in-memory test doubles ---

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() Clock { return func() time.Time { return testNow } }

var (
	staff  = account.Caller{ID: "staff-1", Role: account.RoleStaff}
	admin  = account.Caller{ID: "admin-1", Role: account.RoleAdmin}
	parent = account.Caller{ID: "parent-1", Role: account.RoleMember}
)

type memAuditStore struct {
	events []audit.Event
}

func (s *memAuditStore) Save(_ context.Context, e audit.Event) error {
	s.events = append(s.events, e)
	return nil
}

type memAccountStore struct {
	byEmail map[string]account.Account
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{byEmail: make(map[string]account.Account)}
}

func (s *memAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := s.byEmail[email]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (s *memAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range s.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	s.byEmail[a.Email] = a
	return nil
}

func (s *memAccountStore) Count(_ context.Context) (int, error) {
	return len(s.byEmail), nil
}

type memMemberStore struct {
	byID map[string]member.Member
}

func newMemMemberStore(ms ...member.Member) *memMemberStore {
	s := &memMemberStore{byID: make(map[string]member.Member)}
	for _, m := range ms {
		s.byID[m.ID] = m
	}
	return s
}

func (s *memMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := s.byID[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	return m, nil
}

func (s *memMemberStore) Save(_ context.Context, m member.Member) error {
	s.byID[m.ID] = m
	return nil
}

type memChildStore struct {
	byID map[string]child.Child
}

func newMemChildStore(cs ...child.Child) *memChildStore {
	s := &memChildStore{byID: make(map[string]child.Child)}
	for _, c := range cs {
		s.byID[c.ID] = c
	}
	return s
}

func (s *memChildStore) Save(_ context.Context, c child.Child) error {
	s.byID[c.ID] = c
	return nil
}

func (s *memChildStore) GetByID(_ context.Context, id string) (child.Child, error) {
	c, ok := s.byID[id]
	if !ok {
		return child.Child{}, child.ErrNotFound
	}
	return c, nil
}

func (s *memChildStore) ListByIDs(_ context.Context, ids []string) (map[string]child.Child, error) {
	out := make(map[string]child.Child)
	for _, id := range ids {
		if c, ok := s.byID[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type memProgramSessions struct {
	sessions map[string]programsession.Session // keyed by program|date
}

func newMemProgramSessions(ss ...programsession.Session) *memProgramSessions {
	m := &memProgramSessions{sessions: make(map[string]programsession.Session)}
	for _, s := range ss {
		m.sessions[string(s.Program)+"|"+s.ServiceDate] = s
	}
	return m
}

func (m *memProgramSessions) Get(_ context.Context, p program.Program, serviceDate string) (programsession.Session, error) {
	s, ok := m.sessions[string(p)+"|"+serviceDate]
	if !ok {
		return programsession.Session{}, programsession.ErrNotFound
	}
	return s, nil
}

func (m *memProgramSessions) Open(_ context.Context, p program.Program, serviceDate, openedBy string, now time.Time) (programsession.Session, error) {
	key := string(p) + "|" + serviceDate
	s, ok := m.sessions[key]
	if !ok {
		s = programsession.Session{ID: "ps-" + string(p), Program: p, ServiceDate: serviceDate}
	}
	if !s.IsActive() {
		s.Status = programsession.StatusActive
		s.OpenedBy, s.OpenedAt = openedBy, now
		s.ClosedBy, s.ClosedAt = "", time.Time{}
	}
	m.sessions[key] = s
	return s, nil
}

func (m *memProgramSessions) Close(_ context.Context, p program.Program, serviceDate, closedBy string, now time.Time) (programsession.Session, error) {
	key := string(p) + "|" + serviceDate
	s, ok := m.sessions[key]
	if !ok {
		return programsession.Session{}, programsession.ErrNoActiveSession
	}
	if err := s.Close(closedBy, now); err != nil {
		return programsession.Session{}, programsession.ErrNoActiveSession
	}
	m.sessions[key] = s
	return s, nil
}

func activeProgramSession(p program.Program) programsession.Session {
	return programsession.Session{
		ID:          "ps-" + string(p),
		Program:     p,
		ServiceDate: testNow.Format(programsession.DateLayout),
		Status:      programsession.StatusActive,
	}
}

// recordingProgramCheckIns captures the batch it is handed and assigns codes
// in order from codes.
type recordingProgramCheckIns struct {
	batches []storeProgramCheckIn.Batch
	teens   []programcheckin.CheckIn
	codes   []string
	err     error
}

func (r *recordingProgramCheckIns) CheckInChildren(_ context.Context, b storeProgramCheckIn.Batch, _ *code.Generator) ([]programcheckin.CheckIn, []programcheckin.Skip, error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	r.batches = append(r.batches, b)
	out := make([]programcheckin.CheckIn, 0, len(b.CheckIns))
	for i, c := range b.CheckIns {
		if b.IssueCodes && i < len(r.codes) {
			c.PickupCode = r.codes[i]
		}
		out = append(out, c)
	}
	return out, nil, nil
}

func (r *recordingProgramCheckIns) CheckInTeen(_ context.Context, c programcheckin.CheckIn) (programcheckin.CheckIn, error) {
	for _, t := range r.teens {
		if t.SessionID == c.SessionID && t.TeenUserID() == c.TeenUserID() {
			return programcheckin.CheckIn{}, programcheckin.ErrAlreadyCheckedIn
		}
	}
	r.teens = append(r.teens, c)
	return c, nil
}

type recordingCheckIns struct {
	calls int
	got   checkin.CheckIn
	code  string
	err   error
}

func (r *recordingCheckIns) RecordByCode(_ context.Context, sessionCode string, c checkin.CheckIn) (checkin.CheckIn, error) {
	r.calls++
	r.code = sessionCode
	if r.err != nil {
		return checkin.CheckIn{}, r.err
	}
	c.SessionID = "es-1"
	c.EventID = "ev-1"
	r.got = c
	return c, nil
}

type recordingSender struct {
	sent []emailAdapter.SendRequest
	err  error
}

func (r *recordingSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if r.err != nil {
		return emailAdapter.SendResult{}, r.err
	}
	r.sent = append(r.sent, req)
	return emailAdapter.SendResult{MessageID: "msg-1", SentAt: testNow}, nil
}

func memberFixture(id string, birthday time.Time) member.Member {
	return member.Member{ID: id, Name: "Member " + id, Email: id + "@example.org", Birthday: birthday}
}
