package repositories

import (
	"context"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
)

// GameFilter narrows a game listing
type GameFilter struct {
	PlayerID string
	TableID  string
	Status   entities.GameStatus
	Offset   int
	Limit    int
}

// GameRepository defines the interface for game persistence
type GameRepository interface {
	// Create stores a new game; the game must carry its ID
	Create(ctx context.Context, game *entities.Game) error

	// GetByID returns the game or an error wrapping entities.ErrNotFound
	GetByID(ctx context.Context, id string) (*entities.Game, error)

	// List returns games newest first
	List(ctx context.Context, filter GameFilter) ([]*entities.Game, error)

	// Update replaces the stored game with the given one
	Update(ctx context.Context, game *entities.Game) error

	// CountForTable returns how many games were played at a table
	CountForTable(ctx context.Context, tableID string) (int, error)
}

// DefaultListLimit caps listings that do not set their own limit
const DefaultListLimit = 100
