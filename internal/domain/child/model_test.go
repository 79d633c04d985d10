package child_test

import (
	"testing"
	"time"

	"sanctuary/internal/domain/child"
	"sanctuary/internal/domain/program"
)

// TestChild_Validate tests validation of Child.
func TestChild_Validate(t *testing.T) {
	dob := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		child   child.Child
		wantErr bool
	}{
		{"valid", child.Child{ParentID: "p1", Name: "Samuel", DateOfBirth: dob}, false},
		{"no parent", child.Child{Name: "Samuel", DateOfBirth: dob}, true},
		{"no name", child.Child{ParentID: "p1", Name: " ", DateOfBirth: dob}, true},
		{"no birthday", child.Child{ParentID: "p1", Name: "Samuel"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.child.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestChild_Derived tests the read-time age and program routing.
func TestChild_Derived(t *testing.T) {
	c := child.Child{ParentID: "p1", Name: "Miriam", DateOfBirth: time.Date(2014, time.November, 2, 0, 0, 0, 0, time.UTC)}
	day := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	if got := c.AgeOn(day); got != 11 {
		t.Errorf("AgeOn() = %d, want 11", got)
	}
	if got := c.EligibleProgramOn(day); got != program.Youth {
		t.Errorf("EligibleProgramOn() = %q, want youth", got)
	}
}

// TestChild_OwnershipAndPickup tests ownership and pickup name matching.
func TestChild_OwnershipAndPickup(t *testing.T) {
	c := child.Child{ParentID: "p1", AuthorizedPickupNames: []string{"Hannah Elkanah", "Eli"}}
	if !c.OwnedBy("p1") || c.OwnedBy("p2") || c.OwnedBy("") {
		t.Error("ownership check is wrong")
	}
	if !c.IsAuthorizedPickup("  hannah elkanah ") {
		t.Error("expected case-insensitive match")
	}
	if c.IsAuthorizedPickup("Peninnah") || c.IsAuthorizedPickup("") {
		t.Error("unexpected match")
	}
}
