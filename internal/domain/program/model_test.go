package program_test

import (
	"errors"
	"testing"
	"time"

	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/program"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestParse tests program name parsing.
func TestParse(t *testing.T) {
	for _, name := range []string{"daycare", "youth", "teen"} {
		if _, err := program.Parse(name); err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", name, err)
		}
	}
	if _, err := program.Parse("adults"); !errors.Is(err, failure.ErrValidation) {
		t.Errorf("Parse(adults) error = %v, want validation", err)
	}
}

// TestAgeOn tests completed-year arithmetic around birthdays.
func TestAgeOn(t *testing.T) {
	dob := date(2010, time.June, 15)
	tests := []struct {
		day  time.Time
		want int
	}{
		{date(2026, time.June, 14), 15},
		{date(2026, time.June, 15), 16},
		{date(2026, time.December, 1), 16},
		{date(2009, time.January, 1), 0},
	}
	for _, tt := range tests {
		if got := program.AgeOn(dob, tt.day); got != tt.want {
			t.Errorf("AgeOn(%s) = %d, want %d", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

// TestEligibleOn tests the fixed age bands.
func TestEligibleOn(t *testing.T) {
	today := date(2026, time.October, 16)
	tests := []struct {
		name string
		dob  time.Time
		want program.Program
	}{
		{"two months", date(2026, time.August, 20), program.None},
		{"exactly three months", date(2026, time.July, 16), program.Daycare},
		{"nine", date(2017, time.January, 1), program.Daycare},
		{"turns ten today", date(2016, time.October, 16), program.Youth},
		{"fifteen", date(2011, time.March, 1), program.Youth},
		{"sixteen", date(2010, time.October, 1), program.Teen},
		{"twenty-one", date(2005, time.January, 1), program.Teen},
		{"twenty-two", date(2004, time.October, 16), program.None},
		{"unknown birthday", time.Time{}, program.None},
		{"born tomorrow", date(2026, time.October, 17), program.None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := program.EligibleOn(tt.dob, today); got != tt.want {
				t.Errorf("EligibleOn() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestIssuesPickupCode tests the per-program pickup policy.
func TestIssuesPickupCode(t *testing.T) {
	if !program.Daycare.IssuesPickupCode(false) {
		t.Error("daycare must always issue pickup codes")
	}
	if program.Youth.IssuesPickupCode(false) || !program.Youth.IssuesPickupCode(true) {
		t.Error("youth pickup codes should follow the flag")
	}
	if program.Teen.IssuesPickupCode(true) {
		t.Error("teens never receive pickup codes")
	}
}
