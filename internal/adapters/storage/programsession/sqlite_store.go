package programsession

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sanctuary/internal/adapters/storage"
	"sanctuary/internal/domain/program"
	domain "sanctuary/internal/domain/programsession"
)

const sessionColumns = "id, program, service_date, status, opened_at, opened_by, closed_at, closed_by"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new program session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open upserts today's session for p. Reopening a closed session keeps its ID
// and clears the close stamp; opening an active one leaves it untouched.
// INVARIANT: at most one row per (program, service_date)
func (s *SQLiteStore) Open(ctx context.Context, p program.Program, serviceDate, openedBy string, now time.Time) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO program_session (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, NULL, NULL)
		 ON CONFLICT(program, service_date) DO UPDATE SET
			opened_at = CASE WHEN program_session.status = 'active' THEN program_session.opened_at ELSE excluded.opened_at END,
			opened_by = CASE WHEN program_session.status = 'active' THEN program_session.opened_by ELSE excluded.opened_by END,
			status = 'active',
			closed_at = NULL,
			closed_by = NULL
		 RETURNING `+sessionColumns,
		uuid.New().String(), string(p), serviceDate, domain.StatusActive, storage.FormatTime(now), openedBy)
	session, err := scanSession(row.Scan)
	if err != nil {
		return domain.Session{}, fmt.Errorf("open program session: %w", err)
	}
	return session, nil
}

// Close deactivates the session for (p, serviceDate) if it is active.
// PRE: p is valid
// POST: Returns domain.ErrNoActiveSession when no active row exists
func (s *SQLiteStore) Close(ctx context.Context, p program.Program, serviceDate, closedBy string, now time.Time) (domain.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Session{}, err
	}
	defer tx.Rollback()

	session, err := scanSession(tx.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM program_session WHERE program = ? AND service_date = ?",
		string(p), serviceDate).Scan)
	if err == sql.ErrNoRows {
		return domain.Session{}, domain.ErrNoActiveSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load program session: %w", err)
	}
	if err := session.Close(closedBy, now); err != nil {
		return domain.Session{}, domain.ErrNoActiveSession
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE program_session SET status = ?, closed_at = ?, closed_by = ? WHERE id = ? AND status = ?",
		session.Status, storage.FormatTime(session.ClosedAt), session.ClosedBy, session.ID, domain.StatusActive)
	if err != nil {
		return domain.Session{}, fmt.Errorf("close program session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return domain.Session{}, domain.ErrNoActiveSession
	}

	if err := tx.Commit(); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Get returns the session for (p, serviceDate) in any status.
// PRE: none
// POST: Returns domain.ErrNotFound when no session was ever opened
func (s *SQLiteStore) Get(ctx context.Context, p program.Program, serviceDate string) (domain.Session, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM program_session WHERE program = ? AND service_date = ?",
		string(p), serviceDate).Scan)
	if err == sql.ErrNoRows {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, err
}

// ListByDate returns every session dated serviceDate.
func (s *SQLiteStore) ListByDate(ctx context.Context, serviceDate string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM program_session WHERE service_date = ? ORDER BY program", serviceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, session)
	}
	return results, rows.Err()
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var session domain.Session
	var p, openedAt string
	var closedAt, closedBy sql.NullString
	if err := scan(&session.ID, &p, &session.ServiceDate, &session.Status, &openedAt, &session.OpenedBy, &closedAt, &closedBy); err != nil {
		return domain.Session{}, err
	}
	session.Program = program.Program(p)
	session.ClosedBy = closedBy.String
	var err error
	if session.OpenedAt, err = storage.ParseTime(openedAt); err != nil {
		return domain.Session{}, fmt.Errorf("parse opened_at: %w", err)
	}
	if session.ClosedAt, err = storage.ParseTime(closedAt.String); err != nil {
		return domain.Session{}, fmt.Errorf("parse closed_at: %w", err)
	}
	return session, nil
}
