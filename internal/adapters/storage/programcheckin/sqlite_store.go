package programcheckin

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sanctuary/internal/adapters/storage"
	"sanctuary/internal/domain/code"
	"sanctuary/internal/domain/program"
	domain "sanctuary/internal/domain/programcheckin"
	"sanctuary/internal/domain/programsession"
)

const checkInColumns = "pc.id, pc.session_id, pc.program, pc.child_id, pc.teen_user_id, pc.emergency_contact_name, pc.emergency_contact_phone, pc.notes, pc.pickup_code, pc.picked_up_at, pc.picked_up_by, pc.checked_in_at"

const insertCheckIn = `INSERT INTO program_checkin (id, session_id, program, child_id, teen_user_id, emergency_contact_name, emergency_contact_phone, notes, pickup_code, picked_up_at, picked_up_by, checked_in_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?)`

// pickupScopeQuery lists outstanding pickup codes of sessions on one date.
const pickupScopeQuery = `SELECT pc.pickup_code FROM program_checkin pc
	JOIN program_session ps ON ps.id = pc.session_id
	WHERE ps.service_date = ? AND pc.pickup_code IS NOT NULL AND pc.picked_up_at IS NULL`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new program check-in store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CheckInChildren inserts a batch of child check-ins atomically.
// INVARIANT: an outstanding pickup code is unique among sessions dated b.ServiceDate
func (s *SQLiteStore) CheckInChildren(ctx context.Context, b Batch, gen *code.Generator) ([]domain.CheckIn, []domain.Skip, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	if err := requireActiveSession(ctx, tx, b.SessionID); err != nil {
		return nil, nil, err
	}

	scope := code.ScopeFunc(func(ctx context.Context) ([]string, error) {
		return queryStrings(ctx, tx, pickupScopeQuery, b.ServiceDate)
	})

	var created []domain.CheckIn
	var skipped []domain.Skip
	for _, c := range b.CheckIns {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM program_checkin WHERE session_id = ? AND child_id = ?", b.SessionID, c.ChildID()).Scan(&exists)
		if err == nil {
			skipped = append(skipped, domain.Skip{ChildID: c.ChildID(), Reason: domain.SkipAlreadyCheckedIn})
			continue
		}
		if err != sql.ErrNoRows {
			return nil, nil, fmt.Errorf("check existing: %w", err)
		}

		c.SessionID = b.SessionID
		if b.IssueCodes {
			if c.PickupCode, err = gen.Generate(ctx, scope); err != nil {
				return nil, nil, err
			}
		}
		if err := c.Validate(); err != nil {
			return nil, nil, err
		}
		if err := insert(ctx, tx, c); err != nil {
			return nil, nil, err
		}
		created = append(created, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return created, skipped, nil
}

// CheckInTeen inserts a teen check-in if its session is still active.
// INVARIANT: at most one check-in per (session_id, teen_user_id)
func (s *SQLiteStore) CheckInTeen(ctx context.Context, c domain.CheckIn) (domain.CheckIn, error) {
	if err := c.Validate(); err != nil {
		return domain.CheckIn{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.CheckIn{}, err
	}
	defer tx.Rollback()

	if err := requireActiveSession(ctx, tx, c.SessionID); err != nil {
		return domain.CheckIn{}, err
	}
	err = insert(ctx, tx, c)
	if storage.IsUniqueViolation(err) {
		return domain.CheckIn{}, domain.ErrAlreadyCheckedIn
	}
	if err != nil {
		return domain.CheckIn{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.CheckIn{}, err
	}
	return c, nil
}

// RedeemPickupCode performs the one-way pickup transition.
// INVARIANT: a code that matches zero or several outstanding check-ins changes nothing
func (s *SQLiteStore) RedeemPickupCode(ctx context.Context, pickupCode, serviceDate, pickedUpBy string, now time.Time) (domain.CheckIn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.CheckIn{}, err
	}
	defer tx.Rollback()

	candidates, err := listCheckIns(ctx, tx,
		`SELECT `+checkInColumns+` FROM program_checkin pc
		 JOIN program_session ps ON ps.id = pc.session_id
		 WHERE pc.pickup_code = ? AND pc.picked_up_at IS NULL AND ps.service_date = ?`,
		pickupCode, serviceDate)
	if err != nil {
		return domain.CheckIn{}, fmt.Errorf("find pickup candidates: %w", err)
	}
	if len(candidates) != 1 {
		return domain.CheckIn{}, domain.ErrInvalidPickup
	}
	c := candidates[0]
	if err := c.MarkPickedUp(pickedUpBy, now); err != nil {
		return domain.CheckIn{}, fmt.Errorf("%w: %v", domain.ErrInvalidPickup, err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE program_checkin SET picked_up_at = ?, picked_up_by = ? WHERE id = ? AND picked_up_at IS NULL",
		storage.FormatTime(c.PickedUpAt), storage.NullString(c.PickedUpBy), c.ID)
	if err != nil {
		return domain.CheckIn{}, fmt.Errorf("mark picked up: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return domain.CheckIn{}, domain.ErrInvalidPickup
	}

	if err := tx.Commit(); err != nil {
		return domain.CheckIn{}, err
	}
	return c, nil
}

// ListBySession returns a session's check-ins in arrival order.
func (s *SQLiteStore) ListBySession(ctx context.Context, sessionID string) ([]domain.CheckIn, error) {
	return s.list(ctx,
		"SELECT "+checkInColumns+" FROM program_checkin pc WHERE pc.session_id = ? ORDER BY pc.checked_in_at, pc.id",
		sessionID)
}

// ListByChildrenOnDate returns check-ins of the given children in any session
// dated serviceDate.
func (s *SQLiteStore) ListByChildrenOnDate(ctx context.Context, childIDs []string, serviceDate string) ([]domain.CheckIn, error) {
	if len(childIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(childIDs))
	args := []any{serviceDate}
	for i, id := range childIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := fmt.Sprintf(`SELECT %s FROM program_checkin pc
		JOIN program_session ps ON ps.id = pc.session_id
		WHERE ps.service_date = ? AND pc.child_id IN (%s)
		ORDER BY pc.checked_in_at, pc.id`, checkInColumns, strings.Join(placeholders, ", "))
	return s.list(ctx, query, args...)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.CheckIn, error) {
	return listCheckIns(ctx, s.db, query, args...)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listCheckIns(ctx context.Context, q queryer, query string, args ...any) ([]domain.CheckIn, error) {
	rows, err := q.QueryContext(ctx, query, args...)
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

func requireActiveSession(ctx context.Context, tx *sql.Tx, sessionID string) error {
	var status string
	err := tx.QueryRowContext(ctx, "SELECT status FROM program_session WHERE id = ?", sessionID).Scan(&status)
	if err == sql.ErrNoRows || (err == nil && status != programsession.StatusActive) {
		return programsession.ErrNoActiveSession
	}
	return err
}

func insert(ctx context.Context, tx *sql.Tx, c domain.CheckIn) error {
	_, err := tx.ExecContext(ctx, insertCheckIn,
		c.ID, c.SessionID, string(c.Program),
		storage.NullString(c.ChildID()), storage.NullString(c.TeenUserID()),
		c.EmergencyContact.Name, c.EmergencyContact.Phone, c.Notes,
		storage.NullString(c.PickupCode), storage.FormatTime(c.CheckedInAt))
	return err
}

func queryStrings(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanCheckIn(scan func(dest ...any) error) (domain.CheckIn, error) {
	var c domain.CheckIn
	var p, checkedInAt string
	var childID, teenID, pickupCode, pickedUpAt, pickedUpBy sql.NullString
	if err := scan(&c.ID, &c.SessionID, &p, &childID, &teenID,
		&c.EmergencyContact.Name, &c.EmergencyContact.Phone, &c.Notes,
		&pickupCode, &pickedUpAt, &pickedUpBy, &checkedInAt); err != nil {
		return domain.CheckIn{}, err
	}
	c.Program = program.Program(p)
	switch {
	case childID.Valid:
		c.Attendee = domain.ChildAttendee{ChildID: childID.String}
	case teenID.Valid:
		c.Attendee = domain.TeenAttendee{TeenUserID: teenID.String}
	default:
		return domain.CheckIn{}, fmt.Errorf("program check-in %s has no attendee", c.ID)
	}
	c.PickupCode = pickupCode.String
	c.PickedUpBy = pickedUpBy.String
	var err error
	if c.PickedUpAt, err = storage.ParseTime(pickedUpAt.String); err != nil {
		return domain.CheckIn{}, fmt.Errorf("parse picked_up_at: %w", err)
	}
	if c.CheckedInAt, err = storage.ParseTime(checkedInAt); err != nil {
		return domain.CheckIn{}, fmt.Errorf("parse checked_in_at: %w", err)
	}
	return c, nil
}
