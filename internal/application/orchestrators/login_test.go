package orchestrators

import (
	"context"
	"errors"
	"testing"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
)

func seedAccount(t *testing.T, store *memAccountStore, email, password, role string) account.Account {
	t.Helper()
	a := account.Account{ID: "acct-" + role, Email: email, Role: role, CreatedAt: testNow}
	if err := a.SetPassword(password); err != nil {
		t.Fatalf("set password: %v", err)
	}
	store.byEmail[email] = a
	return a
}

// TestLogin_Success verifies a correct password yields the account's caller identity.
func TestLogin_Success(t *testing.T) {
	store := newMemAccountStore()
	seeded := seedAccount(t, store, "pastor@example.org", "correct horse battery", account.RolePastor)
	audits := &memAuditStore{}

	caller, err := ExecuteLogin(context.Background(), LoginInput{Email: " pastor@example.org ", Password: "correct horse battery"},
		LoginDeps{AccountStore: store, AuditStore: audits, Clock: fixedClock()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.ID != seeded.ID || caller.Role != account.RolePastor {
		t.Errorf("caller = %+v, want %s/%s", caller, seeded.ID, account.RolePastor)
	}
	if len(audits.events) != 1 || audits.events[0].Action != audit.ActionLogin {
		t.Errorf("expected one login audit event, got %+v", audits.events)
	}
}

// TestLogin_UnknownEmail verifies an unknown email is indistinguishable from a wrong password.
func TestLogin_UnknownEmail(t *testing.T) {
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "nobody@example.org", Password: "whatever-password"},
		LoginDeps{AccountStore: newMemAccountStore(), Clock: fixedClock()})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

// TestLogin_LocksAfterRepeatedFailures verifies the lockout kicks in and blocks the correct password too.
func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	store := newMemAccountStore()
	seedAccount(t, store, "member@example.org", "correct horse battery", account.RoleMember)
	deps := LoginDeps{AccountStore: store, Clock: fixedClock()}

	for i := 0; i < account.MaxFailedLogin; i++ {
		_, err := ExecuteLogin(context.Background(), LoginInput{Email: "member@example.org", Password: "wrong password!"}, deps)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "member@example.org", Password: "correct horse battery"}, deps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("err = %v, want ErrAccountLocked", err)
	}
}

// TestLogin_SuccessResetsFailures verifies a good login clears the failure counter.
func TestLogin_SuccessResetsFailures(t *testing.T) {
	store := newMemAccountStore()
	seedAccount(t, store, "member@example.org", "correct horse battery", account.RoleMember)
	deps := LoginDeps{AccountStore: store, Clock: fixedClock()}

	_, _ = ExecuteLogin(context.Background(), LoginInput{Email: "member@example.org", Password: "wrong password!"}, deps)
	if store.byEmail["member@example.org"].FailedLogins != 1 {
		t.Fatalf("expected 1 failed login recorded")
	}
	if _, err := ExecuteLogin(context.Background(), LoginInput{Email: "member@example.org", Password: "correct horse battery"}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.byEmail["member@example.org"].FailedLogins; got != 0 {
		t.Errorf("FailedLogins = %d, want 0", got)
	}
}
