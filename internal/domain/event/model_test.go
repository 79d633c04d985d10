package event_test

import (
	"errors"
	"testing"
	"time"

	"sanctuary/internal/domain/event"
	"sanctuary/internal/domain/failure"
)

// TestEvent_Validate tests validation of Event.
func TestEvent_Validate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		event   event.Event
		wantErr error
	}{
		{"valid", event.Event{Title: "Sunday Service", Status: event.StatusScheduled, CreatedAt: now}, nil},
		{"blank title", event.Event{Title: "  ", Status: event.StatusScheduled, CreatedAt: now}, failure.ErrValidation},
		{"bad status", event.Event{Title: "Vigil", Status: "paused", CreatedAt: now}, failure.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
