package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/child"
	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/program"
	"sanctuary/internal/domain/programcheckin"
	"sanctuary/internal/domain/programsession"
)

var (
	daycareKid = child.Child{ID: "kid-daycare", ParentID: parent.ID, Name: "Ari", DateOfBirth: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	youthKid   = child.Child{ID: "kid-youth", ParentID: parent.ID, Name: "Hine", DateOfBirth: time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)}
	otherKid   = child.Child{ID: "kid-other", ParentID: "someone-else", Name: "Nikau", DateOfBirth: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	contact    = programcheckin.Contact{Name: "Kiri", Phone: "021 555 0100"}
)

func newChildrenDeps(store *recordingProgramCheckIns, sessions ...programsession.Session) CheckInChildrenDeps {
	return CheckInChildrenDeps{
		SessionStore: newMemProgramSessions(sessions...),
		ChildStore:   newMemChildStore(daycareKid, youthKid, otherKid),
		CheckInStore: store,
		AuditStore:   &memAuditStore{},
		Clock:        fixedClock(),
		Location:     time.UTC,
	}
}

// TestCheckInChildren_SkipsForeignAndIneligible verifies per-child outcomes in one batch.
func TestCheckInChildren_SkipsForeignAndIneligible(t *testing.T) {
	store := &recordingProgramCheckIns{codes: []string{"4821"}}
	deps := newChildrenDeps(store, activeProgramSession(program.Daycare))

	res, err := ExecuteCheckInChildren(context.Background(), CheckInChildrenInput{
		Program:          "daycare",
		ChildIDs:         []string{daycareKid.ID, otherKid.ID, youthKid.ID, daycareKid.ID, "missing"},
		Parent:           parent,
		EmergencyContact: contact,
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Created) != 1 || res.Created[0].ChildID() != daycareKid.ID {
		t.Fatalf("created = %+v", res.Created)
	}
	if res.Created[0].PickupCode != "4821" {
		t.Errorf("pickup code = %q, want 4821", res.Created[0].PickupCode)
	}

	reasons := map[string]string{}
	for _, s := range res.Skipped {
		reasons[s.ChildID] = s.Reason
	}
	want := map[string]string{
		otherKid.ID: programcheckin.SkipNotOwner,
		youthKid.ID: programcheckin.SkipIneligible,
		"missing":   programcheckin.SkipNotOwner,
	}
	for id, reason := range want {
		if reasons[id] != reason {
			t.Errorf("skip reason for %s = %q, want %q", id, reasons[id], reason)
		}
	}
	if len(store.batches) != 1 || !store.batches[0].IssueCodes {
		t.Errorf("daycare batch must issue codes: %+v", store.batches)
	}
}

// TestCheckInChildren_YouthCodesFollowSetting verifies the youth pickup code toggle.
func TestCheckInChildren_YouthCodesFollowSetting(t *testing.T) {
	for _, on := range []bool{true, false} {
		store := &recordingProgramCheckIns{}
		deps := newChildrenDeps(store, activeProgramSession(program.Youth))
		deps.YouthPickupCodes = on

		if _, err := ExecuteCheckInChildren(context.Background(), CheckInChildrenInput{
			Program: "youth", ChildIDs: []string{youthKid.ID}, Parent: parent, EmergencyContact: contact,
		}, deps); err != nil {
			t.Fatalf("youth codes %t: %v", on, err)
		}
		if got := store.batches[0].IssueCodes; got != on {
			t.Errorf("IssueCodes = %t, want %t", got, on)
		}
	}
}

func TestCheckInChildren_NoSessionOrClosed(t *testing.T) {
	closed := activeProgramSession(program.Daycare)
	closed.Status = programsession.StatusClosed

	for name, deps := range map[string]CheckInChildrenDeps{
		"never opened": newChildrenDeps(&recordingProgramCheckIns{}),
		"closed":       newChildrenDeps(&recordingProgramCheckIns{}, closed),
	} {
		_, err := ExecuteCheckInChildren(context.Background(), CheckInChildrenInput{
			Program: "daycare", ChildIDs: []string{daycareKid.ID}, Parent: parent, EmergencyContact: contact,
		}, deps)
		if !errors.Is(err, programsession.ErrNoActiveSession) {
			t.Errorf("%s: err = %v, want ErrNoActiveSession", name, err)
		}
	}
}

func TestCheckInChildren_InputValidation(t *testing.T) {
	deps := newChildrenDeps(&recordingProgramCheckIns{}, activeProgramSession(program.Daycare))
	cases := map[string]CheckInChildrenInput{
		"teen program":    {Program: "teen", ChildIDs: []string{daycareKid.ID}, Parent: parent, EmergencyContact: contact},
		"unknown program": {Program: "choir", ChildIDs: []string{daycareKid.ID}, Parent: parent, EmergencyContact: contact},
		"no contact":      {Program: "daycare", ChildIDs: []string{daycareKid.ID}, Parent: parent},
		"no children":     {Program: "daycare", ChildIDs: []string{" "}, Parent: parent, EmergencyContact: contact},
	}
	for name, in := range cases {
		_, err := ExecuteCheckInChildren(context.Background(), in, deps)
		if failure.Kind(err) != failure.KindValidation {
			t.Errorf("%s: kind = %q, want validation", name, failure.Kind(err))
		}
	}
}

// TestCheckInChildren_AllSkippedSkipsStore verifies no empty batch is sent.
func TestCheckInChildren_AllSkippedSkipsStore(t *testing.T) {
	store := &recordingProgramCheckIns{}
	deps := newChildrenDeps(store, activeProgramSession(program.Daycare))
	res, err := ExecuteCheckInChildren(context.Background(), CheckInChildrenInput{
		Program: "daycare", ChildIDs: []string{otherKid.ID}, Parent: parent, EmergencyContact: contact,
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Skipped) != 1 || len(store.batches) != 0 {
		t.Errorf("result = %+v, batches = %d", res, len(store.batches))
	}
}

func newTeenDeps(store *recordingProgramCheckIns, members *memMemberStore) CheckInTeenDeps {
	return CheckInTeenDeps{
		MemberStore:  members,
		SessionStore: newMemProgramSessions(activeProgramSession(program.Teen)),
		CheckInStore: store,
		Clock:        fixedClock(),
		Location:     time.UTC,
	}
}

// TestCheckInTeen_AgeBand verifies the inclusive 16 to 21 band.
func TestCheckInTeen_AgeBand(t *testing.T) {
	cases := []struct {
		name     string
		birthday time.Time
		wantErr  error
	}{
		{"turns 16 today", time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC), nil},
		{"15", time.Date(2010, 3, 2, 0, 0, 0, 0, time.UTC), programcheckin.ErrTeenAge},
		{"21", time.Date(2004, 6, 1, 0, 0, 0, 0, time.UTC), nil},
		{"22", time.Date(2004, 3, 1, 0, 0, 0, 0, time.UTC), programcheckin.ErrTeenAge},
		{"no birthday", time.Time{}, programcheckin.ErrNoBirthday},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			members := newMemMemberStore(memberFixture("teen-1", tc.birthday))
			_, err := ExecuteCheckInTeen(context.Background(), CheckInTeenInput{Teen: account.Caller{ID: "teen-1", Role: account.RoleMember}},
				newTeenDeps(&recordingProgramCheckIns{}, members))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

// TestCheckInTeen_NoPickupCodeAndNoRepeat verifies teens get no code and check in once.
func TestCheckInTeen_NoPickupCodeAndNoRepeat(t *testing.T) {
	store := &recordingProgramCheckIns{}
	members := newMemMemberStore(memberFixture("teen-1", time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC)))
	deps := newTeenDeps(store, members)
	teen := account.Caller{ID: "teen-1", Role: account.RoleMember}

	c, err := ExecuteCheckInTeen(context.Background(), CheckInTeenInput{Teen: teen}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PickupCode != "" || c.TeenUserID() != "teen-1" {
		t.Errorf("check-in = %+v", c)
	}
	if _, err := ExecuteCheckInTeen(context.Background(), CheckInTeenInput{Teen: teen}, deps); failure.Kind(err) != failure.KindDuplicate {
		t.Errorf("second check-in kind = %q, want duplicate", failure.Kind(err))
	}
}

func TestCheckInTeen_UnknownProfile(t *testing.T) {
	_, err := ExecuteCheckInTeen(context.Background(), CheckInTeenInput{Teen: account.Caller{ID: "ghost"}},
		newTeenDeps(&recordingProgramCheckIns{}, newMemMemberStore()))
	if !errors.Is(err, programcheckin.ErrNoBirthday) {
		t.Errorf("err = %v, want ErrNoBirthday", err)
	}
}
