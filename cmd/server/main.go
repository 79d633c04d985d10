package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	emailPkg "sanctuary/internal/adapters/email"
	web "sanctuary/internal/adapters/http"
	"sanctuary/internal/adapters/http/middleware"
	"sanctuary/internal/adapters/ratelimit"
	"sanctuary/internal/adapters/storage"
	accountStore "sanctuary/internal/adapters/storage/account"
	auditStore "sanctuary/internal/adapters/storage/audit"
	checkInStore "sanctuary/internal/adapters/storage/checkin"
	childStore "sanctuary/internal/adapters/storage/child"
	eventStore "sanctuary/internal/adapters/storage/event"
	eventSessionStore "sanctuary/internal/adapters/storage/eventsession"
	memberStore "sanctuary/internal/adapters/storage/member"
	programCheckInStore "sanctuary/internal/adapters/storage/programcheckin"
	programSessionStore "sanctuary/internal/adapters/storage/programsession"
	"sanctuary/internal/application/orchestrators"
	"sanctuary/internal/domain/code"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	slog.SetDefault(newLogger())

	production := os.Getenv("SANCTUARY_ENV") == "production"

	loc := time.Local
	if tz := os.Getenv("SANCTUARY_TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			fatal("invalid SANCTUARY_TIMEZONE", err)
		}
		loc = l
	}

	// Initialize database with WAL mode, foreign keys, busy timeout and immediate transactions
	dbPath := envOrDefault("SANCTUARY_DB_PATH", "sanctuary.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	timedDB := storage.NewTimedDB(db, storage.SlowQueryThreshold())

	stores := &web.Stores{
		AccountStore:        accountStore.NewSQLiteStore(timedDB),
		MemberStore:         memberStore.NewSQLiteStore(timedDB),
		ChildStore:          childStore.NewSQLiteStore(timedDB),
		EventStore:          eventStore.NewSQLiteStore(timedDB),
		EventSessionStore:   eventSessionStore.NewSQLiteStore(timedDB),
		CheckInStore:        checkInStore.NewSQLiteStore(timedDB),
		ProgramSessionStore: programSessionStore.NewSQLiteStore(timedDB),
		ProgramCheckInStore: programCheckInStore.NewSQLiteStore(timedDB),
		AuditStore:          auditStore.NewSQLiteStore(timedDB),
	}

	// Seed default admin account if no accounts exist
	adminEmail := os.Getenv("SANCTUARY_ADMIN_EMAIL")
	adminPassword := os.Getenv("SANCTUARY_ADMIN_PASSWORD")
	if adminEmail != "" && adminPassword != "" {
		seedDeps := orchestrators.CreateAccountDeps{
			AccountStore: stores.AccountStore,
			MemberStore:  stores.MemberStore,
			AuditStore:   stores.AuditStore,
		}
		if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
			fatal("failed to seed admin", err)
		}
	} else if production {
		slog.Warn("config_event", "event", "no_admin_seed", "hint", "set SANCTUARY_ADMIN_EMAIL and SANCTUARY_ADMIN_PASSWORD on first start")
	}

	csrfKey, err := web.LoadCSRFKey()
	if err != nil {
		fatal("invalid CSRF configuration", err)
	}

	limiter, closeLimiter := newCodeLimiter()
	defer closeLimiter()

	// Configure email sender
	var sender emailPkg.Sender
	emailFrom := envOrDefault("SANCTUARY_EMAIL_FROM", "Sanctuary <noreply@example.org>")
	if resendKey := os.Getenv("SANCTUARY_RESEND_KEY"); resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		slog.Info("config_event", "event", "email_sender", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if production {
			slog.Warn("config_event", "event", "email_disabled", "hint", "SANCTUARY_RESEND_KEY is not set; pickup notifications are not delivered")
		}
	}

	handler := web.NewMux(web.Config{
		Location:         loc,
		YouthPickupCodes: envBool("SANCTUARY_YOUTH_PICKUP_CODES", true),
		CSRFKey:          csrfKey,
		SecureCookies:    production,
		TrustedOrigins:   splitList(os.Getenv("SANCTUARY_TRUSTED_ORIGINS")),
		CodeLimiter:      limiter,
		Sender:           sender,
		Generator:        code.NewGenerator(),
		SlowRequest:      middleware.SlowRequestThreshold(),
	}, stores)

	addr := envOrDefault("SANCTUARY_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server_event", "event", "starting", "version", version, "addr", addr,
			"env", envOrDefault("SANCTUARY_ENV", "development"), "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_event", "event", "shutdown_failed", "error", err)
	}
	slog.Info("server_event", "event", "stopped")
}

// newCodeLimiter uses Redis when SANCTUARY_REDIS_URL is set so limits hold
// across instances; otherwise limits are per process.
func newCodeLimiter() (ratelimit.Limiter, func()) {
	perMinute := envInt("SANCTUARY_CODE_RATE_LIMIT", web.DefaultCodeAttempts)
	if url := os.Getenv("SANCTUARY_REDIS_URL"); url != "" {
		client, err := ratelimit.NewRedisClientFromURL(url)
		if err != nil {
			fatal("invalid SANCTUARY_REDIS_URL", err)
		}
		rl := ratelimit.NewRedisLimiter(client, "sanctuary:rl", perMinute, time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rl.Ping(ctx); err != nil {
			slog.Warn("config_event", "event", "redis_unreachable", "error", err)
		}
		slog.Info("config_event", "event", "rate_limiter", "backend", "redis", "per_minute", perMinute)
		return rl, func() { client.Close() }
	}
	rl := ratelimit.NewMemoryLimiter(perMinute, time.Minute)
	slog.Info("config_event", "event", "rate_limiter", "backend", "memory", "per_minute", perMinute)
	return rl, rl.Close
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(envOrDefault("SANCTUARY_LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("SANCTUARY_LOG_FORMAT") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
