package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
	"sanctuary/internal/domain/failure"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	AuditStore   AuditStore
	Clock        Clock
}

var (
	ErrInvalidCredentials = failure.New(failure.ErrValidation, "invalid email or password")
	ErrAccountLocked      = failure.New(failure.ErrForbidden, "account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and returns the caller identity for session creation.
// PRE: Valid email and password provided
// POST: Returns the caller on success, records failed login on failure
// INVARIANT: Account must not be locked
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (account.Caller, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return account.Caller{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "reason", "not_found")
		return account.Caller{}, ErrInvalidCredentials
	}

	now := deps.Clock.now()
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "account_id", acct.ID, "reason", "locked")
		return account.Caller{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "failed_login_not_recorded", "account_id", acct.ID, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "account_id", acct.ID, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return account.Caller{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return account.Caller{}, err
		}
	}

	slog.Info("auth_event", "event", "login_success", "account_id", acct.ID, "role", acct.Role)
	recordAudit(ctx, deps.AuditStore, audit.NewEvent(acct.ID, acct.Role, audit.CategoryAccount, audit.ActionLogin, now))
	return acct.Caller(), nil
}
