package child

import (
	"context"

	domain "sanctuary/internal/domain/child"
)

// Store persists Child records.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Child, error)
	Save(ctx context.Context, value domain.Child) error
	ListByParent(ctx context.Context, parentID string) ([]domain.Child, error)
	ListByIDs(ctx context.Context, ids []string) (map[string]domain.Child, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
