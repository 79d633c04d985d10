package orchestrators

import (
	"context"
	"errors"
	"testing"

	"sanctuary/internal/domain/checkin"
	"sanctuary/internal/domain/eventsession"
	"sanctuary/internal/domain/failure"
)

func TestCheckInMember_RejectsMalformedCode(t *testing.T) {
	store := &recordingCheckIns{}
	for _, c := range []string{"", "123", "12345", "12a4"} {
		_, err := ExecuteCheckInMember(context.Background(), CheckInMemberInput{Code: c, MemberID: "m-1"},
			CheckInDeps{CheckInStore: store, Clock: fixedClock()})
		if !errors.Is(err, eventsession.ErrInvalidCode) {
			t.Errorf("code %q: err = %v, want ErrInvalidCode", c, err)
		}
	}
	if store.calls != 0 {
		t.Errorf("store called %d times for malformed codes", store.calls)
	}
}

// TestCheckInMember_Records verifies the member reference and details reach the store.
func TestCheckInMember_Records(t *testing.T) {
	store := &recordingCheckIns{}
	audits := &memAuditStore{}
	c, err := ExecuteCheckInMember(context.Background(), CheckInMemberInput{Code: " 0815 ", MemberID: "m-1", ChildrenCount: 2, PrayerRequest: " healing "},
		CheckInDeps{CheckInStore: store, AuditStore: audits, Clock: fixedClock()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.code != "0815" {
		t.Errorf("store saw code %q", store.code)
	}
	if c.MemberID() != "m-1" || c.ChildrenCount != 2 || c.PrayerRequest != "healing" {
		t.Errorf("check-in = %+v", c)
	}
	if !c.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v", c.CreatedAt)
	}
	if len(audits.events) != 1 {
		t.Errorf("expected 1 audit event")
	}
}

// TestCheckInMember_DuplicatePassesThrough verifies dedup errors keep their kind.
func TestCheckInMember_DuplicatePassesThrough(t *testing.T) {
	store := &recordingCheckIns{err: checkin.ErrAlreadyCheckedIn}
	audits := &memAuditStore{}
	_, err := ExecuteCheckInMember(context.Background(), CheckInMemberInput{Code: "0815", MemberID: "m-1"},
		CheckInDeps{CheckInStore: store, AuditStore: audits, Clock: fixedClock()})
	if failure.Kind(err) != failure.KindDuplicate {
		t.Errorf("kind = %q, want duplicate", failure.Kind(err))
	}
	if len(audits.events) != 0 {
		t.Errorf("failed check-in must not audit")
	}
}

// TestCheckInGuest_EmptyCodeAllowed verifies an empty code targets the single active session.
func TestCheckInGuest_EmptyCodeAllowed(t *testing.T) {
	store := &recordingCheckIns{}
	c, err := ExecuteCheckInGuest(context.Background(), CheckInGuestInput{
		Guest:     checkin.GuestAttendee{FirstName: " Mere ", Phone: "021 555 0199"},
		FirstTime: true,
	}, CheckInDeps{CheckInStore: store, Clock: fixedClock()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, ok := c.Guest()
	if !ok || g.FirstName != "Mere" || !c.FirstTime {
		t.Errorf("check-in = %+v", c)
	}
	if store.code != "" {
		t.Errorf("store saw code %q, want empty", store.code)
	}
}

func TestCheckInGuest_RequiresContact(t *testing.T) {
	store := &recordingCheckIns{}
	_, err := ExecuteCheckInGuest(context.Background(), CheckInGuestInput{
		Guest: checkin.GuestAttendee{FirstName: "Mere"},
	}, CheckInDeps{CheckInStore: store, Clock: fixedClock()})
	if failure.Kind(err) != failure.KindValidation {
		t.Errorf("kind = %q, want validation", failure.Kind(err))
	}
	if store.calls != 0 {
		t.Errorf("store must not be called for an invalid guest")
	}
}
