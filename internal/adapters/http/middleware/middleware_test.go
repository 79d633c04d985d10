package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sanctuary/internal/domain/account"
)

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestRateLimit(t *testing.T) {
	cases := []struct {
		name    string
		limiter *stubLimiter
		want    int
	}{
		{"allowed", &stubLimiter{allow: true}, http.StatusNoContent},
		{"exceeded", &stubLimiter{allow: false}, http.StatusTooManyRequests},
		{"limiter down fails open", &stubLimiter{err: errors.New("redis down")}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/pickup/redeem", nil)
			req.RemoteAddr = "10.1.2.3:5555"
			rr := httptest.NewRecorder()
			RateLimit(tc.limiter, "pickup")(okHandler).ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
			if len(tc.limiter.keys) != 1 || tc.limiter.keys[0] != "pickup:10.1.2.3" {
				t.Errorf("keys = %v", tc.limiter.keys)
			}
		})
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	ss := NewSessionStore()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ss.now = func() time.Time { return clock }

	token, err := ss.Create(account.Caller{ID: "a-1", Role: account.RoleStaff})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s, ok := ss.Get(token)
	if !ok || s.Caller() != (account.Caller{ID: "a-1", Role: account.RoleStaff}) {
		t.Fatalf("session = %+v, ok = %t", s, ok)
	}

	clock = clock.Add(SessionLifetime + time.Second)
	if _, ok := ss.Get(token); ok {
		t.Errorf("expired session still valid")
	}
}

func TestRequireRole(t *testing.T) {
	guarded := RequireRole(account.StaffRoles...)(okHandler)

	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, httptest.NewRequest("GET", "/api/audit", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rr.Code)
	}

	for role, want := range map[string]int{
		account.RoleMember: http.StatusForbidden,
		account.RolePastor: http.StatusNoContent,
		account.RoleAdmin:  http.StatusNoContent,
	} {
		req := httptest.NewRequest("GET", "/api/audit", nil)
		req = req.WithContext(ContextWithSession(req.Context(), Session{AccountID: "x", Role: role}))
		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("%s: status = %d, want %d", role, rr.Code, want)
		}
	}
}

func TestAuth_ReadsCookie(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create(account.Caller{ID: "m-1", Role: account.RoleMember})

	var got account.Caller
	h := Auth(ss)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CallerFromContext(r.Context())
	})))

	req := httptest.NewRequest("GET", "/api/programs/mine", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || got.ID != "m-1" {
		t.Errorf("status = %d, caller = %+v", rr.Code, got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
}
