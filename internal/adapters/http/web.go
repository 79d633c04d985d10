package web

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sanctuary/internal/adapters/email"
	"sanctuary/internal/adapters/http/middleware"
	"sanctuary/internal/adapters/ratelimit"
	accountStore "sanctuary/internal/adapters/storage/account"
	auditStore "sanctuary/internal/adapters/storage/audit"
	checkInStore "sanctuary/internal/adapters/storage/checkin"
	childStore "sanctuary/internal/adapters/storage/child"
	eventStore "sanctuary/internal/adapters/storage/event"
	eventSessionStore "sanctuary/internal/adapters/storage/eventsession"
	memberStore "sanctuary/internal/adapters/storage/member"
	programCheckInStore "sanctuary/internal/adapters/storage/programcheckin"
	programSessionStore "sanctuary/internal/adapters/storage/programsession"
	"sanctuary/internal/domain/code"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore        accountStore.Store
	MemberStore         memberStore.Store
	ChildStore          childStore.Store
	EventStore          eventStore.Store
	EventSessionStore   eventSessionStore.Store
	CheckInStore        checkInStore.Store
	ProgramSessionStore programSessionStore.Store
	ProgramCheckInStore programCheckInStore.Store
	AuditStore          auditStore.Store
}

// Config carries runtime settings for the HTTP layer.
type Config struct {
	// Location defines "today" for program sessions and pickups. Nil means time.Local.
	Location *time.Location
	// YouthPickupCodes issues pickup codes for the youth program.
	YouthPickupCodes bool

	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string

	// CodeLimiter throttles code entry and login per client IP. Nil uses an
	// in-memory limiter of DefaultCodeAttempts per minute.
	CodeLimiter ratelimit.Limiter
	// Sender delivers pickup notifications. Nil disables them.
	Sender email.Sender
	// Generator issues session and pickup codes. Nil uses the crypto source.
	Generator *code.Generator
	// Clock overrides time.Now in tests.
	Clock       func() time.Time
	SlowRequest time.Duration
}

// DefaultCodeAttempts is the per-minute allowance for code entry endpoints.
const DefaultCodeAttempts = 20

// LoadCSRFKey reads the CSRF secret from SANCTUARY_CSRF_KEY (hex-encoded, 32 bytes).
// In production the key MUST be set. In development a random key is generated per startup.
func LoadCSRFKey() ([]byte, error) {
	if keyHex := os.Getenv("SANCTUARY_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("SANCTUARY_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if os.Getenv("SANCTUARY_ENV") == "production" {
		return nil, errors.New("SANCTUARY_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set SANCTUARY_CSRF_KEY for production")
	return key, nil
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Runtime settings (set by NewMux)
var cfg Config

// NewMux wires HTTP handlers for the app.
func NewMux(c Config, s *Stores) http.Handler {
	stores = s
	cfg = c
	if cfg.CodeLimiter == nil {
		cfg.CodeLimiter = ratelimit.NewMemoryLimiter(DefaultCodeAttempts, time.Minute)
	}
	if cfg.Generator == nil {
		cfg.Generator = code.NewGenerator()
	}
	if cfg.SlowRequest <= 0 {
		cfg.SlowRequest = middleware.SlowRequestThreshold()
	}
	sessions = middleware.NewSessionStore()

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Applied inner to outer: SecurityHeaders -> CSRF -> Auth -> Timing
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, cfg.SecureCookies, cfg.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.Timing(cfg.SlowRequest),
	)
}

// now is the handler-side clock.
func now() time.Time {
	if cfg.Clock != nil {
		return cfg.Clock()
	}
	return time.Now()
}
