package database

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/domain/repositories"
	"github.com/pokertrack/pokertrack-server/pkg/db"
)

// page sorts items newest first and applies offset and limit
func page[T any](items []*T, created func(*T) time.Time, offset, limit int) []*T {
	slices.SortStableFunc(items, func(a, b *T) int {
		return created(b).Compare(created(a))
	})
	if limit <= 0 {
		limit = repositories.DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []*T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// InMemoryTableRepository is an in-memory implementation of TableRepository
type InMemoryTableRepository struct {
	tables map[string]*entities.Table
	mutex  sync.RWMutex
}

// NewInMemoryTableRepository creates an empty table repository
func NewInMemoryTableRepository() *InMemoryTableRepository {
	return &InMemoryTableRepository{tables: make(map[string]*entities.Table)}
}

// Create stores a copy of table
func (r *InMemoryTableRepository) Create(ctx context.Context, table *entities.Table) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.tables[table.ID]; exists {
		return fmt.Errorf("table %s: %w", table.ID, db.ErrAlreadyExists)
	}
	r.tables[table.ID] = table.Clone()
	return nil
}

// GetByID returns a copy of the stored table
func (r *InMemoryTableRepository) GetByID(ctx context.Context, id string) (*entities.Table, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	table, exists := r.tables[id]
	if !exists {
		return nil, fmt.Errorf("table %s: %w", id, entities.ErrNotFound)
	}
	return table.Clone(), nil
}

// List returns copies of matching tables, newest first
func (r *InMemoryTableRepository) List(ctx context.Context, filter repositories.TableFilter) ([]*entities.Table, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []*entities.Table
	for _, t := range r.tables {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.PlayerID != "" && t.CreatorID != filter.PlayerID && t.Player(filter.PlayerID) == nil {
			continue
		}
		out = append(out, t.Clone())
	}
	return page(out, func(t *entities.Table) time.Time { return t.CreatedAt }, filter.Offset, filter.Limit), nil
}

// Update replaces the stored table
func (r *InMemoryTableRepository) Update(ctx context.Context, table *entities.Table) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.tables[table.ID]; !exists {
		return fmt.Errorf("table %s: %w", table.ID, entities.ErrNotFound)
	}
	r.tables[table.ID] = table.Clone()
	return nil
}

// Delete removes a table
func (r *InMemoryTableRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.tables[id]; !exists {
		return fmt.Errorf("table %s: %w", id, entities.ErrNotFound)
	}
	delete(r.tables, id)
	return nil
}

// InMemoryGameRepository is an in-memory implementation of GameRepository
type InMemoryGameRepository struct {
	games map[string]*entities.Game
	mutex sync.RWMutex
}

// NewInMemoryGameRepository creates an empty game repository
func NewInMemoryGameRepository() *InMemoryGameRepository {
	return &InMemoryGameRepository{games: make(map[string]*entities.Game)}
}

// Create stores a copy of game
func (r *InMemoryGameRepository) Create(ctx context.Context, game *entities.Game) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.games[game.ID]; exists {
		return fmt.Errorf("game %s: %w", game.ID, db.ErrAlreadyExists)
	}
	r.games[game.ID] = game.Clone()
	return nil
}

// GetByID returns a copy of the stored game
func (r *InMemoryGameRepository) GetByID(ctx context.Context, id string) (*entities.Game, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	game, exists := r.games[id]
	if !exists {
		return nil, fmt.Errorf("game %s: %w", id, entities.ErrNotFound)
	}
	return game.Clone(), nil
}

// List returns copies of matching games, newest first
func (r *InMemoryGameRepository) List(ctx context.Context, filter repositories.GameFilter) ([]*entities.Game, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []*entities.Game
	for _, g := range r.games {
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.TableID != "" && g.TableID != filter.TableID {
			continue
		}
		if filter.PlayerID != "" && !g.HasParticipant(filter.PlayerID) {
			continue
		}
		out = append(out, g.Clone())
	}
	return page(out, func(g *entities.Game) time.Time { return g.CreatedAt }, filter.Offset, filter.Limit), nil
}

// Update replaces the stored game
func (r *InMemoryGameRepository) Update(ctx context.Context, game *entities.Game) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.games[game.ID]; !exists {
		return fmt.Errorf("game %s: %w", game.ID, entities.ErrNotFound)
	}
	r.games[game.ID] = game.Clone()
	return nil
}

// CountForTable counts the games played at tableID
func (r *InMemoryGameRepository) CountForTable(ctx context.Context, tableID string) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	n := 0
	for _, g := range r.games {
		if g.TableID == tableID {
			n++
		}
	}
	return n, nil
}
