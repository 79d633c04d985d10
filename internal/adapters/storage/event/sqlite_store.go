package event

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sanctuary/internal/adapters/storage"
	domain "sanctuary/internal/domain/event"
)

const eventColumns = "id, title, starts_at, status, created_by, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new EventStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Event by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM event WHERE id = ?", id)
	entity, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Event{}, domain.ErrNotFound
	}
	return entity, err
}

// Save persists an Event to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			starts_at=excluded.starts_at,
			status=excluded.status`,
		entity.ID,
		entity.Title,
		storage.FormatTime(entity.StartsAt),
		entity.Status,
		entity.CreatedBy,
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// List retrieves Events ordered by start time, most recent first.
// PRE: filter.Limit > 0
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Event, error) {
	var b strings.Builder
	var args []any
	b.WriteString("SELECT " + eventColumns + " FROM event")
	if filter.Status != "" {
		b.WriteString(" WHERE status = ?")
		args = append(args, filter.Status)
	}
	b.WriteString(" ORDER BY COALESCE(starts_at, created_at) DESC LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		entity, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var entity domain.Event
	var startsAt sql.NullString
	var createdAt string
	if err := scan(&entity.ID, &entity.Title, &startsAt, &entity.Status, &entity.CreatedBy, &createdAt); err != nil {
		return domain.Event{}, err
	}
	var err error
	if entity.StartsAt, err = storage.ParseTime(startsAt.String); err != nil {
		return domain.Event{}, fmt.Errorf("parse starts_at: %w", err)
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Event{}, fmt.Errorf("parse created_at: %w", err)
	}
	return entity, nil
}
