package programsession_test

import (
	"errors"
	"testing"
	"time"

	"sanctuary/internal/domain/program"
	"sanctuary/internal/domain/programsession"
)

// TestServiceDate tests that the date follows the configured zone.
func TestServiceDate(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	instant := time.Date(2026, time.October, 16, 20, 0, 0, 0, time.UTC)
	if got := programsession.ServiceDate(instant, time.UTC); got != "2026-10-16" {
		t.Errorf("UTC date = %q", got)
	}
	if got := programsession.ServiceDate(instant, auckland); got != "2026-10-17" {
		t.Errorf("Auckland date = %q", got)
	}
}

// TestSession_Lifecycle tests active -> closed and that close happens once.
func TestSession_Lifecycle(t *testing.T) {
	now := time.Now()
	s := programsession.Session{ID: "p1", Program: program.Daycare, ServiceDate: "2026-10-16", Status: programsession.StatusActive, OpenedAt: now, OpenedBy: "staff1"}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if err := s.Close("staff2", now); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if s.IsActive() || s.ClosedBy != "staff2" {
		t.Errorf("after close: status=%q closed_by=%q", s.Status, s.ClosedBy)
	}
	if err := s.Close("staff2", now); !errors.Is(err, programsession.ErrNotActive) {
		t.Errorf("second Close() error = %v, want ErrNotActive", err)
	}
}

// TestSession_ValidateRejectsBadDate tests service date format checks.
func TestSession_ValidateRejectsBadDate(t *testing.T) {
	s := programsession.Session{Program: program.Youth, ServiceDate: "16/10/2026", Status: programsession.StatusActive}
	if err := s.Validate(); err == nil {
		t.Error("expected error for malformed date")
	}
}
