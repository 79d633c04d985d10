package checkin

import (
	"context"
	"database/sql"
	"fmt"

	"sanctuary/internal/adapters/storage"
	domain "sanctuary/internal/domain/checkin"
	"sanctuary/internal/domain/eventsession"
)

const checkInColumns = "id, session_id, event_id, type, member_id, guest_first_name, guest_last_name, guest_phone, guest_email, first_time, contact_ok, children_count, prayer_request, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new check-in store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// RecordByCode resolves the session and inserts the check-in atomically.
// INVARIANT: at most one member check-in per (session_id, member_id)
func (s *SQLiteStore) RecordByCode(ctx context.Context, sessionCode string, c domain.CheckIn) (domain.CheckIn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.CheckIn{}, err
	}
	defer tx.Rollback()

	var row *sql.Row
	if sessionCode == "" {
		row = tx.QueryRowContext(ctx, "SELECT id, event_id FROM event_session WHERE status = ?", eventsession.StatusActive)
	} else {
		row = tx.QueryRowContext(ctx, "SELECT id, event_id FROM event_session WHERE code = ? AND status = ?", sessionCode, eventsession.StatusActive)
	}
	err = row.Scan(&c.SessionID, &c.EventID)
	if err == sql.ErrNoRows {
		if sessionCode == "" {
			return domain.CheckIn{}, eventsession.ErrNoActiveSession
		}
		return domain.CheckIn{}, eventsession.ErrInvalidCode
	}
	if err != nil {
		return domain.CheckIn{}, fmt.Errorf("resolve session: %w", err)
	}

	if err := c.Validate(); err != nil {
		return domain.CheckIn{}, err
	}

	var memberID any
	var guest domain.GuestAttendee
	if m, ok := c.Attendee.(domain.MemberAttendee); ok {
		memberID = m.MemberID
	} else {
		guest, _ = c.Guest()
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO checkin ("+checkInColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.SessionID, c.EventID, c.Type(), memberID,
		storage.NullString(guest.FirstName), storage.NullString(guest.LastName),
		storage.NullString(guest.Phone), storage.NullString(guest.Email),
		c.FirstTime, c.ContactOK, c.ChildrenCount, c.PrayerRequest,
		storage.FormatTime(c.CreatedAt))
	if storage.IsUniqueViolation(err) {
		return domain.CheckIn{}, domain.ErrAlreadyCheckedIn
	}
	if err != nil {
		return domain.CheckIn{}, fmt.Errorf("insert check-in: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.CheckIn{}, err
	}
	return c, nil
}

// ListBySession returns a session's check-ins in arrival order.
func (s *SQLiteStore) ListBySession(ctx context.Context, sessionID string) ([]domain.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+checkInColumns+" FROM checkin WHERE session_id = ? ORDER BY created_at, id", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func scanCheckIn(scan func(dest ...any) error) (domain.CheckIn, error) {
	var c domain.CheckIn
	var typ, createdAt string
	var memberID, first, last, phone, email sql.NullString
	if err := scan(&c.ID, &c.SessionID, &c.EventID, &typ, &memberID, &first, &last, &phone, &email,
		&c.FirstTime, &c.ContactOK, &c.ChildrenCount, &c.PrayerRequest, &createdAt); err != nil {
		return domain.CheckIn{}, err
	}
	switch typ {
	case domain.TypeMember:
		c.Attendee = domain.MemberAttendee{MemberID: memberID.String}
	case domain.TypeGuest:
		c.Attendee = domain.GuestAttendee{FirstName: first.String, LastName: last.String, Phone: phone.String, Email: email.String}
	default:
		return domain.CheckIn{}, fmt.Errorf("unknown check-in type %q", typ)
	}
	var err error
	if c.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.CheckIn{}, fmt.Errorf("parse created_at: %w", err)
	}
	return c, nil
}
