package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sanctuary/internal/domain/account"
	"sanctuary/internal/domain/audit"
	"sanctuary/internal/domain/failure"
	"sanctuary/internal/domain/member"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// MemberStoreForProfile defines the store interface needed to write profiles.
type MemberStoreForProfile interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email    string
	Password string
	Role     string
	Name     string
	Phone    string
	Birthday time.Time
	Actor    account.Caller
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	MemberStore  MemberStoreForProfile
	AuditStore   AuditStore
	Clock        Clock
}

var ErrEmailAlreadyExists = failure.New(failure.ErrConflict, "an account with this email already exists")

// ExecuteCreateAccount creates an account and its member profile.
// PRE: Actor is admin; valid email, password >= 12 chars, valid role
// POST: Account and profile created sharing one ID
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	if input.Actor.Role != account.RoleAdmin {
		return "", failure.New(failure.ErrForbidden, "only an admin can create accounts")
	}
	return createAccount(ctx, input, deps)
}

func createAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	email := strings.TrimSpace(input.Email)
	if _, err := deps.AccountStore.GetByEmail(ctx, email); err == nil {
		return "", ErrEmailAlreadyExists
	}

	now := deps.Clock.now()
	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      input.Role,
		CreatedAt: now,
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	profile := member.Member{
		ID:       acct.ID,
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Phone:    strings.TrimSpace(input.Phone),
		Birthday: input.Birthday,
	}
	if profile.Name == "" {
		profile.Name = email
	}
	if err := profile.Validate(); err != nil {
		return "", err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}
	if err := deps.MemberStore.Save(ctx, profile); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "account_id", acct.ID, "role", acct.Role)
	recordAudit(ctx, deps.AuditStore, newAudit(input.Actor, audit.CategoryAccount, audit.ActionCreate, now).
		WithResource("account", acct.ID))
	return acct.ID, nil
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is migrated
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	id, err := createAccount(ctx, CreateAccountInput{
		Email:    email,
		Password: password,
		Role:     account.RoleAdmin,
		Name:     "Administrator",
	}, deps)
	if err != nil {
		return err
	}
	slog.Info("auth_event", "event", "admin_seeded", "account_id", id)
	return nil
}

// UpdateProfileInput carries the caller's own profile edits.
type UpdateProfileInput struct {
	Name     string
	Phone    string
	Birthday time.Time
	Caller   account.Caller
}

// ExecuteUpdateProfile edits the caller's member profile.
// PRE: Caller is authenticated
// POST: Profile name, phone and birthday replaced; email unchanged
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, store MemberStoreForProfile) (member.Member, error) {
	profile, err := store.GetByID(ctx, input.Caller.ID)
	if err != nil {
		return member.Member{}, err
	}
	profile.Name = strings.TrimSpace(input.Name)
	profile.Phone = strings.TrimSpace(input.Phone)
	profile.Birthday = input.Birthday
	if err := profile.Validate(); err != nil {
		return member.Member{}, err
	}
	if err := store.Save(ctx, profile); err != nil {
		return member.Member{}, err
	}
	slog.Info("auth_event", "event", "profile_updated", "account_id", profile.ID)
	return profile, nil
}
