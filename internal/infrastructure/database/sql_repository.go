package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/domain/repositories"
	"github.com/pokertrack/pokertrack-server/pkg/db"
)

// Migrate creates the schema for the connection's dialect
func Migrate(ctx context.Context, conn db.Database) error {
	var stmts []string
	switch conn.DriverName() {
	case db.TypeMySQL:
		stmts = mysqlSchema
	case db.TypePostgres:
		stmts = postgresSchema
	default:
		return fmt.Errorf("no schema for driver %q", conn.DriverName())
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SQLTableRepository stores tables as JSON documents
type SQLTableRepository struct {
	store *documentStore
}

// NewSQLTableRepository creates a table repository on conn
func NewSQLTableRepository(conn db.Database) *SQLTableRepository {
	return &SQLTableRepository{store: newDocumentStore(conn, tablesCollection)}
}

func tableDocument(t *entities.Table) (document, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return document{}, fmt.Errorf("encode table %s: %w", t.ID, err)
	}
	members := make([]string, 0, len(t.Players)+1)
	members = append(members, t.CreatorID)
	for _, p := range t.Players {
		members = append(members, p.UserID)
	}
	return document{
		ID:        t.ID,
		Status:    string(t.Status),
		CreatorID: t.CreatorID,
		Data:      data,
		Members:   members,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

func decodeTable(data []byte) (*entities.Table, error) {
	var t entities.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	return &t, nil
}

// Create stores a new table
func (r *SQLTableRepository) Create(ctx context.Context, table *entities.Table) error {
	doc, err := tableDocument(table)
	if err != nil {
		return err
	}
	return r.store.insert(ctx, doc)
}

// GetByID loads a table
func (r *SQLTableRepository) GetByID(ctx context.Context, id string) (*entities.Table, error) {
	data, err := r.store.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeTable(data)
}

// List returns tables matching filter, newest first
func (r *SQLTableRepository) List(ctx context.Context, filter repositories.TableFilter) ([]*entities.Table, error) {
	docs, err := r.store.list(ctx, listQuery{
		Member: filter.PlayerID,
		Status: string(filter.Status),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	tables := make([]*entities.Table, 0, len(docs))
	for _, data := range docs {
		t, err := decodeTable(data)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Update replaces a stored table
func (r *SQLTableRepository) Update(ctx context.Context, table *entities.Table) error {
	doc, err := tableDocument(table)
	if err != nil {
		return err
	}
	return r.store.update(ctx, doc)
}

// Delete removes a table
func (r *SQLTableRepository) Delete(ctx context.Context, id string) error {
	return r.store.delete(ctx, id)
}

// SQLGameRepository stores games as JSON documents
type SQLGameRepository struct {
	store *documentStore
}

// NewSQLGameRepository creates a game repository on conn
func NewSQLGameRepository(conn db.Database) *SQLGameRepository {
	return &SQLGameRepository{store: newDocumentStore(conn, gamesCollection)}
}

func gameDocument(g *entities.Game) (document, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return document{}, fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	members := make([]string, 0, len(g.Players)+1)
	members = append(members, g.CreatorID)
	for _, p := range g.Players {
		members = append(members, p.UserID)
	}
	return document{
		ID:        g.ID,
		Status:    string(g.Status),
		CreatorID: g.CreatorID,
		Parent:    g.TableID,
		Data:      data,
		Members:   members,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}, nil
}

func decodeGame(data []byte) (*entities.Game, error) {
	var g entities.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return &g, nil
}

// Create stores a new game
func (r *SQLGameRepository) Create(ctx context.Context, game *entities.Game) error {
	doc, err := gameDocument(game)
	if err != nil {
		return err
	}
	return r.store.insert(ctx, doc)
}

// GetByID loads a game
func (r *SQLGameRepository) GetByID(ctx context.Context, id string) (*entities.Game, error) {
	data, err := r.store.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeGame(data)
}

// List returns games matching filter, newest first
func (r *SQLGameRepository) List(ctx context.Context, filter repositories.GameFilter) ([]*entities.Game, error) {
	docs, err := r.store.list(ctx, listQuery{
		Member: filter.PlayerID,
		Status: string(filter.Status),
		Parent: filter.TableID,
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	games := make([]*entities.Game, 0, len(docs))
	for _, data := range docs {
		g, err := decodeGame(data)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

// Update replaces a stored game
func (r *SQLGameRepository) Update(ctx context.Context, game *entities.Game) error {
	doc, err := gameDocument(game)
	if err != nil {
		return err
	}
	return r.store.update(ctx, doc)
}

// CountForTable counts the games played at tableID
func (r *SQLGameRepository) CountForTable(ctx context.Context, tableID string) (int, error) {
	return r.store.countByParent(ctx, tableID)
}
