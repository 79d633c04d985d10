package member_test

import (
	"testing"
	"time"

	"sanctuary/internal/domain/member"
)

// TestMember_Validate tests validation of Member.
func TestMember_Validate(t *testing.T) {
	tests := []struct {
		name    string
		member  member.Member
		wantErr bool
	}{
		{"valid", member.Member{Name: "Priscilla", Email: "pris@example.com"}, false},
		{"no name", member.Member{Email: "pris@example.com"}, true},
		{"bad email", member.Member{Name: "Priscilla", Email: "pris"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.member.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestMember_AgeOn tests age derivation from the birthday.
func TestMember_AgeOn(t *testing.T) {
	m := member.Member{Birthday: time.Date(2009, time.October, 17, 0, 0, 0, 0, time.UTC)}
	if !m.HasBirthday() {
		t.Fatal("expected birthday on file")
	}
	if got := m.AgeOn(time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)); got != 16 {
		t.Errorf("AgeOn() = %d, want 16", got)
	}
}
