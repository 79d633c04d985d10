package web

import (
	"net/http"
	"time"

	"sanctuary/internal/adapters/http/middleware"
	"sanctuary/internal/application/orchestrators"
	"sanctuary/internal/domain/member"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type callerView struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type profileView struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Birthday string `json:"birthday,omitempty"`
}

func newProfileView(m member.Member, role string) profileView {
	v := profileView{ID: m.ID, Role: role, Name: m.Name, Email: m.Email, Phone: m.Phone}
	if m.HasBirthday() {
		v.Birthday = m.Birthday.Format(time.DateOnly)
	}
	return v
}

// handleLogin handles POST /login
// PRE: Body carries email and password
// POST: Session cookie set on success; 401 on bad credentials
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		Clock:        cfg.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := sessions.Create(c)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token, cfg.SecureCookies)
	writeJSON(w, http.StatusOK, callerView{ID: c.ID, Role: c.Role})
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w, cfg.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me
func handleMe(w http.ResponseWriter, r *http.Request) {
	c := caller(r)
	m, err := stores.MemberStore.GetByID(r.Context(), c.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(m, c.Role))
}

type profileRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
}

// handleUpdateProfile handles PUT /api/me/profile
func handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	birthday, _ := parseOptionalDate(req.Birthday)

	c := caller(r)
	m, err := orchestrators.ExecuteUpdateProfile(r.Context(), orchestrators.UpdateProfileInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Birthday: birthday,
		Caller:   c,
	}, stores.MemberStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(m, c.Role))
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=12"`
}

// handleChangePassword handles POST /api/me/password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		Caller:          caller(r),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, stores.AccountStore)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createAccountRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=12"`
	Role     string `json:"role" validate:"required,oneof=admin pastor staff member"`
	Name     string `json:"name" validate:"omitempty,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
}

// handleCreateAccount handles POST /api/accounts
// PRE: Caller is admin
// POST: Account and member profile created; 409 when the email is taken
func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	birthday, _ := parseOptionalDate(req.Birthday)

	id, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Name:     req.Name,
		Phone:    req.Phone,
		Birthday: birthday,
		Actor:    caller(r),
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		MemberStore:  stores.MemberStore,
		AuditStore:   stores.AuditStore,
		Clock:        cfg.Clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, callerView{ID: id, Role: req.Role})
}

// parseOptionalDate parses YYYY-MM-DD; empty yields the zero time.
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
