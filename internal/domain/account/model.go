// Package account holds login identities and the caller identity every
// check-in operation receives.
package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sanctuary/internal/domain/failure"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MinPasswordLen = 12
	MaxFailedLogin = 5
	LockoutPeriod  = 15 * time.Minute
)

// Role constants. Roles are trusted as given; they are not re-derived.
const (
	RoleAdmin  = "admin"
	RolePastor = "pastor"
	RoleStaff  = "staff"
	RoleMember = "member"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RolePastor, RoleStaff, RoleMember}

// StaffRoles may run sessions, rosters, and pickups.
var StaffRoles = []string{RoleAdmin, RolePastor, RoleStaff}

// Domain errors
var (
	ErrInvalidEmail     = failure.Validation("email must contain '@'")
	ErrEmptyEmail       = failure.Validation("email cannot be empty")
	ErrInvalidRole      = failure.Validation("role must be one of: admin, pastor, staff, member")
	ErrEmptyPassword    = failure.Validation("password cannot be empty")
	ErrPasswordTooShort = failure.Validation("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Caller is the identity an operation runs as.
type Caller struct {
	ID   string
	Role string
}

// IsStaff reports whether the caller holds a staff role.
func (c Caller) IsStaff() bool {
	return IsStaffRole(c.Role)
}

// IsStaffRole reports whether role is admin, pastor, or staff.
func IsStaffRole(role string) bool {
	for _, r := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Account is a login identity. Its member profile carries the same ID.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return failure.Validation("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// Caller returns the identity this account acts as.
func (a *Account) Caller() Caller {
	return Caller{ID: a.ID, Role: a.Role}
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is locked out at now.
func (a *Account) IsLocked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the
// account after MaxFailedLogin failures.
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogin {
		a.LockedUntil = now.Add(LockoutPeriod)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
