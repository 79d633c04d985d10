package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"sanctuary/internal/domain/failure"
)

// TestKind tests mapping of wrapped errors to kind names.
func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", failure.New(failure.ErrNotFound, "no active session"), failure.KindNotFound},
		{"wrapped conflict", fmt.Errorf("start: %w", failure.New(failure.ErrConflict, "busy")), failure.KindConflict},
		{"duplicate", failure.ErrDuplicate, failure.KindDuplicate},
		{"validation", failure.Validation("name required"), failure.KindValidation},
		{"exhausted", fmt.Errorf("gen: %w", failure.ErrCodeSpaceExhausted), failure.KindCodeSpaceExhausted},
		{"forbidden", failure.New(failure.ErrForbidden, "staff only"), failure.KindForbidden},
		{"plain", errors.New("disk on fire"), failure.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNew_KeepsMessage tests that the message is the user-facing text.
func TestNew_KeepsMessage(t *testing.T) {
	err := failure.New(failure.ErrNotFound, "invalid code")
	if err.Error() != "invalid code" {
		t.Errorf("Error() = %q, want %q", err.Error(), "invalid code")
	}
	if !errors.Is(err, failure.ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}
}
