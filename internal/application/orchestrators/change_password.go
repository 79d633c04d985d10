package orchestrators

import (
	"context"
	"log/slog"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/failure"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	Caller          account.Caller
	CurrentPassword string
	NewPassword     string
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

var (
	ErrCurrentPasswordWrong = failure.Validation("current password is incorrect")
	ErrNewPasswordSame      = failure.Validation("new password must be different from current password")
)

// ExecuteChangePassword validates the current password and updates to the new one.
// PRE: Caller is authenticated, both passwords are non-empty
// POST: Password hash replaced
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, store AccountStoreForChangePassword) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return failure.Validation("all fields are required")
	}

	acct, err := store.GetByID(ctx, input.Caller.ID)
	if err != nil {
		return failure.New(failure.ErrNotFound, "account not found")
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		return ErrCurrentPasswordWrong
	}
	if input.CurrentPassword == input.NewPassword {
		return ErrNewPasswordSame
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := store.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID)
	return nil
}
