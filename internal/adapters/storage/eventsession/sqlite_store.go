package eventsession

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sanctuary/internal/adapters/storage"
	"sanctuary/internal/domain/code"
	"sanctuary/internal/domain/event"
	domain "sanctuary/internal/domain/eventsession"
)

const sessionColumns = "id, event_id, code, status, started_at, ended_at, started_by"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new event session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Start activates a check-in session for eventID.
// PRE: eventID is non-empty; gen is non-nil
// POST: At most one active session exists system-wide
func (s *SQLiteStore) Start(ctx context.Context, eventID, startedBy string, now time.Time, gen *code.Generator) (domain.Session, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Session{}, false, err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, "SELECT status FROM event WHERE id = ?", eventID).Scan(&status)
	if err == sql.ErrNoRows {
		return domain.Session{}, false, event.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("load event: %w", err)
	}

	active, err := scanSession(tx.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM event_session WHERE status = ?", domain.StatusActive).Scan)
	switch {
	case err == nil && active.EventID == eventID:
		return active, false, nil
	case err == nil:
		return domain.Session{}, false, domain.ErrAnotherSessionActive
	case err != sql.ErrNoRows:
		return domain.Session{}, false, fmt.Errorf("load active session: %w", err)
	}

	scope := code.ScopeFunc(func(ctx context.Context) ([]string, error) {
		return queryCodes(ctx, tx, "SELECT code FROM event_session WHERE status = ?", domain.StatusActive)
	})
	c, err := gen.Generate(ctx, scope)
	if err != nil {
		return domain.Session{}, false, err
	}

	session := domain.Session{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Code:      c,
		Status:    domain.StatusActive,
		StartedAt: now,
		StartedBy: startedBy,
	}
	if err := session.Validate(); err != nil {
		return domain.Session{}, false, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO event_session ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		session.ID, session.EventID, session.Code, session.Status,
		storage.FormatTime(session.StartedAt), nil, session.StartedBy)
	if storage.IsUniqueViolation(err) {
		return domain.Session{}, false, domain.ErrAnotherSessionActive
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("insert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE event SET status = ? WHERE id = ?", event.StatusLive, eventID); err != nil {
		return domain.Session{}, false, fmt.Errorf("mark event live: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Session{}, false, err
	}
	return session, true, nil
}

// StopForEvent ends every active session of eventID and marks the event
// completed.
// PRE: eventID is non-empty
// POST: No active session references eventID
func (s *SQLiteStore) StopForEvent(ctx context.Context, eventID string, now time.Time) ([]domain.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM event WHERE id = ?", eventID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, event.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}

	active, err := listSessions(ctx, tx,
		"SELECT "+sessionColumns+" FROM event_session WHERE event_id = ? AND status = ?",
		eventID, domain.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("load active sessions: %w", err)
	}

	ended := make([]domain.Session, 0, len(active))
	for _, session := range active {
		if err := session.End(now); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE event_session SET status = ?, ended_at = ? WHERE id = ? AND status = ?",
			session.Status, storage.FormatTime(session.EndedAt), session.ID, domain.StatusActive); err != nil {
			return nil, fmt.Errorf("end session: %w", err)
		}
		ended = append(ended, session)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE event SET status = ? WHERE id = ?", event.StatusCompleted, eventID); err != nil {
		return nil, fmt.Errorf("mark event completed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ended, nil
}

// GetActive returns the active session, or nil when none is active.
func (s *SQLiteStore) GetActive(ctx context.Context) (*domain.Session, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM event_session WHERE status = ?", domain.StatusActive).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByID retrieves a session in any status.
// PRE: id is non-empty
// POST: Returns domain.ErrNotFound when absent
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM event_session WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, err
}

func queryCodes(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func listSessions(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]domain.Session, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var session domain.Session
	var startedAt string
	var endedAt sql.NullString
	if err := scan(&session.ID, &session.EventID, &session.Code, &session.Status, &startedAt, &endedAt, &session.StartedBy); err != nil {
		return domain.Session{}, err
	}
	var err error
	if session.StartedAt, err = storage.ParseTime(startedAt); err != nil {
		return domain.Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	if session.EndedAt, err = storage.ParseTime(endedAt.String); err != nil {
		return domain.Session{}, fmt.Errorf("parse ended_at: %w", err)
	}
	return session, nil
}
