package eventsession_test

import (
	"errors"
	"testing"
	"time"

	"sanctuary/internal/domain/eventsession"
	"sanctuary/internal/domain/failure"
)

// TestSession_Validate tests validation of event Session.
func TestSession_Validate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		session eventsession.Session
		wantErr bool
	}{
		{"valid", eventsession.Session{EventID: "e1", Code: "0420", Status: eventsession.StatusActive, StartedAt: now}, false},
		{"missing event", eventsession.Session{Code: "0420", Status: eventsession.StatusActive, StartedAt: now}, true},
		{"short code", eventsession.Session{EventID: "e1", Code: "42", Status: eventsession.StatusActive, StartedAt: now}, true},
		{"unknown status", eventsession.Session{EventID: "e1", Code: "0420", Status: "paused", StartedAt: now}, true},
		{"zero started_at", eventsession.Session{EventID: "e1", Code: "0420", Status: eventsession.StatusActive}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestSession_End tests the active -> ended transition.
func TestSession_End(t *testing.T) {
	t.Run("end active session", func(t *testing.T) {
		s := eventsession.Session{EventID: "e1", Code: "1111", Status: eventsession.StatusActive, StartedAt: time.Now()}
		at := time.Now()
		if err := s.End(at); err != nil {
			t.Fatalf("End() unexpected error: %v", err)
		}
		if s.IsActive() {
			t.Error("session should be ended")
		}
		if !s.EndedAt.Equal(at) {
			t.Errorf("EndedAt = %v, want %v", s.EndedAt, at)
		}
	})

	t.Run("ended is terminal", func(t *testing.T) {
		s := eventsession.Session{Status: eventsession.StatusEnded}
		if err := s.End(time.Now()); !errors.Is(err, eventsession.ErrNotActive) {
			t.Errorf("End() error = %v, want ErrNotActive", err)
		}
	})
}

// TestErrorKinds tests that session errors carry their kinds.
func TestErrorKinds(t *testing.T) {
	if !errors.Is(eventsession.ErrAnotherSessionActive, failure.ErrConflict) {
		t.Error("ErrAnotherSessionActive should be a conflict")
	}
	if !errors.Is(eventsession.ErrInvalidCode, failure.ErrNotFound) {
		t.Error("ErrInvalidCode should be not found")
	}
}
