package member

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sanctuary/internal/adapters/storage"
	domain "sanctuary/internal/domain/member"
)

const birthdayLayout = "2006-01-02"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, phone, birthday FROM member WHERE id = ?", id)
	entity, err := scanMember(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Member{}, domain.ErrNotFound
	}
	return entity, err
}

// Save persists a Member to the database.
// PRE: entity has been validated; its account exists
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	var birthday any
	if entity.HasBirthday() {
		birthday = entity.Birthday.Format(birthdayLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (id, name, email, phone, birthday) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			email=excluded.email,
			phone=excluded.phone,
			birthday=excluded.birthday`,
		entity.ID, entity.Name, entity.Email, entity.Phone, birthday)
	return err
}

// ListByIDs returns the profiles for ids keyed by ID. Unknown IDs are absent.
// PRE: none
// POST: Returns an empty map when ids is empty
func (s *SQLiteStore) ListByIDs(ctx context.Context, ids []string) (map[string]domain.Member, error) {
	results := make(map[string]domain.Member, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("SELECT id, name, email, phone, birthday FROM member WHERE id IN (%s)", strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		entity, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results[entity.ID] = entity
	}
	return results, rows.Err()
}

func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var entity domain.Member
	var birthday sql.NullString
	if err := scan(&entity.ID, &entity.Name, &entity.Email, &entity.Phone, &birthday); err != nil {
		return domain.Member{}, err
	}
	if birthday.Valid && birthday.String != "" {
		b, err := time.Parse(birthdayLayout, birthday.String)
		if err != nil {
			return domain.Member{}, fmt.Errorf("parse birthday: %w", err)
		}
		entity.Birthday = b
	}
	return entity, nil
}
