// Package code issues short numeric codes that people type on a phone or a
// check-in tablet: event codes and pickup codes.
package code

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"sanctuary/internal/domain/failure"
)

// Length is the number of digits in every issued code.
const Length = 4

// space is the number of distinct codes of Length digits.
const space = 10000

// DefaultMaxAttempts bounds the number of draws before giving up.
const DefaultMaxAttempts = 20

// Scope reports the codes currently in use within one namespace.
// Event codes and pickup codes are separate scopes.
type Scope interface {
	ActiveCodes(ctx context.Context) ([]string, error)
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func(ctx context.Context) ([]string, error)

// ActiveCodes calls f.
func (f ScopeFunc) ActiveCodes(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Generator draws uniform random codes and retries on collision.
type Generator struct {
	MaxAttempts int
	// Intn returns a uniform value in [0, n). Defaults to crypto/rand.
	Intn func(n int) (int, error)
}

// NewGenerator returns a Generator using crypto/rand and DefaultMaxAttempts.
func NewGenerator() *Generator {
	return &Generator{MaxAttempts: DefaultMaxAttempts, Intn: cryptoIntn}
}

// Generate returns a code not currently in use within scope.
// PRE: scope is readable; callers hold whatever lock makes the read and the
// later insert of the code atomic
// POST: Returns a Length-digit string, or an error wrapping
// failure.ErrCodeSpaceExhausted after MaxAttempts collisions
func (g *Generator) Generate(ctx context.Context, scope Scope) (string, error) {
	used, err := scope.ActiveCodes(ctx)
	if err != nil {
		return "", fmt.Errorf("read active codes: %w", err)
	}
	inUse := make(map[string]struct{}, len(used))
	for _, c := range used {
		inUse[c] = struct{}{}
	}

	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	intn := g.Intn
	if intn == nil {
		intn = cryptoIntn
	}

	for i := 0; i < attempts; i++ {
		n, err := intn(space)
		if err != nil {
			return "", fmt.Errorf("draw code: %w", err)
		}
		candidate := Format(n)
		if _, taken := inUse[candidate]; !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free code after %d attempts (%d in use): %w", attempts, len(inUse), failure.ErrCodeSpaceExhausted)
}

// Format renders n as a zero-padded code.
func Format(n int) string {
	return fmt.Sprintf("%0*d", Length, n%space)
}

// Valid reports whether s has the shape of an issued code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cryptoIntn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
