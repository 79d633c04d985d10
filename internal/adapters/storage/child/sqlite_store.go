package child

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sanctuary/internal/adapters/storage"
	domain "sanctuary/internal/domain/child"
)

const (
	childColumns = "id, parent_id, name, date_of_birth, allergies, notes, authorized_pickup_names, created_at"
	dobLayout    = "2006-01-02"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ChildStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Child by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Child, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+childColumns+" FROM child WHERE id = ?", id)
	entity, err := scanChild(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Child{}, domain.ErrNotFound
	}
	return entity, err
}

// Save persists a Child to the database.
// PRE: entity has been validated; its parent account exists
// POST: Entity is persisted (insert or update); the parent never changes
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Child) error {
	names := entity.AuthorizedPickupNames
	if names == nil {
		names = []string{}
	}
	pickup, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode pickup names: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO child (`+childColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			date_of_birth=excluded.date_of_birth,
			allergies=excluded.allergies,
			notes=excluded.notes,
			authorized_pickup_names=excluded.authorized_pickup_names`,
		entity.ID,
		entity.ParentID,
		entity.Name,
		entity.DateOfBirth.Format(dobLayout),
		entity.Allergies,
		entity.Notes,
		string(pickup),
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// ListByParent returns a parent's children ordered by name.
func (s *SQLiteStore) ListByParent(ctx context.Context, parentID string) ([]domain.Child, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+childColumns+" FROM child WHERE parent_id = ? ORDER BY name", parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Child
	for rows.Next() {
		entity, err := scanChild(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListByIDs returns the children for ids keyed by ID. Unknown IDs are absent.
func (s *SQLiteStore) ListByIDs(ctx context.Context, ids []string) (map[string]domain.Child, error) {
	results := make(map[string]domain.Child, len(ids))
	if len(ids) == 0 {
		return results, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM child WHERE id IN (%s)", childColumns, strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		entity, err := scanChild(rows.Scan)
		if err != nil {
			return nil, err
		}
		results[entity.ID] = entity
	}
	return results, rows.Err()
}

func scanChild(scan func(dest ...any) error) (domain.Child, error) {
	var entity domain.Child
	var dob, pickup, createdAt string
	if err := scan(&entity.ID, &entity.ParentID, &entity.Name, &dob, &entity.Allergies, &entity.Notes, &pickup, &createdAt); err != nil {
		return domain.Child{}, err
	}
	var err error
	if entity.DateOfBirth, err = time.Parse(dobLayout, dob); err != nil {
		return domain.Child{}, fmt.Errorf("parse date_of_birth: %w", err)
	}
	if err := json.Unmarshal([]byte(pickup), &entity.AuthorizedPickupNames); err != nil {
		return domain.Child{}, fmt.Errorf("decode pickup names: %w", err)
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Child{}, fmt.Errorf("parse created_at: %w", err)
	}
	return entity, nil
}
