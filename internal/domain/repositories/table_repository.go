package repositories

import (
	"context"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
)

// TableFilter narrows a table listing. Zero values mean "no constraint";
// a zero Limit means the repository default.
type TableFilter struct {
	PlayerID string
	Status   entities.GameStatus
	Offset   int
	Limit    int
}

// TableRepository defines the interface for table persistence
type TableRepository interface {
	// Create stores a new table; the table must carry its ID
	Create(ctx context.Context, table *entities.Table) error

	// GetByID returns the table or an error wrapping entities.ErrNotFound
	GetByID(ctx context.Context, id string) (*entities.Table, error)

	// List returns tables newest first
	List(ctx context.Context, filter TableFilter) ([]*entities.Table, error)

	// Update replaces the stored table with the given one
	Update(ctx context.Context, table *entities.Table) error

	// Delete removes a table
	Delete(ctx context.Context, id string) error
}
