package database

import (
	"context"
	"fmt"

	"github.com/pokertrack/pokertrack-server/internal/config"
	"github.com/pokertrack/pokertrack-server/internal/domain/repositories"
	"github.com/pokertrack/pokertrack-server/internal/logger"
	"github.com/pokertrack/pokertrack-server/pkg/db"
)

// TypeMemory keeps everything in process memory
const TypeMemory = "memory"

// Repositories bundles the repositories of one backend
type Repositories struct {
	Tables repositories.TableRepository
	Games  repositories.GameRepository

	conn db.Database
}

// Close releases the underlying connection, if any
func (r *Repositories) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// Ping checks the backend is reachable
func (r *Repositories) Ping(ctx context.Context) error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Ping(ctx)
}

// Factory manages the creation of database repositories
type Factory struct {
	newDatabase func(db.Config) (db.Database, error)
}

// NewFactory creates a new database factory
func NewFactory() *Factory {
	return &Factory{newDatabase: db.NewDatabase}
}

// CreateRepositories creates the repositories for the configured database type.
// SQL backends are connected and migrated before returning.
func (f *Factory) CreateRepositories(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, error) {
	switch cfg.Type {
	case "", TypeMemory:
		logger.Info("Using in-memory repositories")
		return &Repositories{
			Tables: NewInMemoryTableRepository(),
			Games:  NewInMemoryGameRepository(),
		}, nil
	case db.TypeMySQL, db.TypePostgres:
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	conn, err := f.newDatabase(db.Config{
		Type:     cfg.Type,
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", conn.ConnectionString(), err)
	}
	if err := Migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Repositories{
		Tables: NewSQLTableRepository(conn),
		Games:  NewSQLGameRepository(conn),
		conn:   conn,
	}, nil
}
