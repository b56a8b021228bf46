package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/pokertrack/pokertrack-server/internal/logger"
)

// Common database errors
var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrNoDatabase    = errors.New("no database connection")
)

// Supported driver names
const (
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
)

// Config represents database connection configuration
type Config struct {
	Type     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// SetDefaults sets default values for the configuration if they are not set
func (c *Config) SetDefaults() {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 5 * time.Minute
	}
}

// Database represents a generic database interface
type Database interface {
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// Transaction support
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)

	Connect() error
	Close() error
	Ping(ctx context.Context) error

	// DriverName is either TypeMySQL or TypePostgres
	DriverName() string
	// Placeholder returns the bind parameter for the n-th (1-based) argument
	Placeholder(n int) string
	ConnectionString() string
}

// database is the concrete implementation of the Database interface
type database struct {
	config     Config
	db         *sql.DB
	driverName string
	dsn        string
}

// NewDatabase creates a new database connection based on the provided configuration
func NewDatabase(config Config) (Database, error) {
	config.SetDefaults()

	var dsn string
	switch config.Type {
	case TypeMySQL:
		mc := mysql.NewConfig()
		mc.User = config.User
		mc.Passwd = config.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", config.Host, config.Port)
		mc.DBName = config.Name
		mc.ParseTime = true
		dsn = mc.FormatDSN()
	case TypePostgres:
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			config.Host, config.Port, config.User, config.Password, config.Name)
	default:
		return nil, fmt.Errorf("unsupported database type: %q", config.Type)
	}

	return &database{
		config:     config,
		driverName: config.Type,
		dsn:        dsn,
	}, nil
}

// Connect establishes a connection to the database
func (d *database) Connect() error {
	db, err := sql.Open(d.driverName, d.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(d.config.MaxOpenConns)
	db.SetMaxIdleConns(d.config.MaxIdleConns)
	db.SetConnMaxLifetime(d.config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(d.config.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("Error closing database connection: %v", closeErr)
		}
		return fmt.Errorf("failed to ping database: %w", err)
	}

	d.db = db
	logger.Info("Connected to %s database at %s:%d/%s", d.config.Type, d.config.Host, d.config.Port, d.config.Name)
	return nil
}

// Close closes the database connection
func (d *database) Close() error {
	if d.db == nil {
		return nil
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Ping checks if the database connection is still alive
func (d *database) Ping(ctx context.Context) error {
	if d.db == nil {
		return ErrNoDatabase
	}
	return d.db.PingContext(ctx)
}

// Query executes a query that returns rows
func (d *database) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if d.db == nil {
		return nil, ErrNoDatabase
	}
	return d.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that is expected to return at most one row
func (d *database) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if d.db == nil {
		return nil
	}
	return d.db.QueryRowContext(ctx, query, args...)
}

// Exec executes a query without returning any rows
func (d *database) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if d.db == nil {
		return nil, ErrNoDatabase
	}
	return d.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction
func (d *database) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if d.db == nil {
		return nil, ErrNoDatabase
	}
	return d.db.BeginTx(ctx, opts)
}

// DriverName returns the name of the database driver
func (d *database) DriverName() string {
	return d.driverName
}

// Placeholder returns "?" for MySQL and "$n" for PostgreSQL
func (d *database) Placeholder(n int) string {
	return Placeholder(d.driverName, n)
}

// ConnectionString returns the connection string (with password masked)
func (d *database) ConnectionString() string {
	switch d.config.Type {
	case TypeMySQL:
		return fmt.Sprintf("%s:***@tcp(%s:%d)/%s",
			d.config.User, d.config.Host, d.config.Port, d.config.Name)
	case TypePostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=*** dbname=%s sslmode=disable",
			d.config.Host, d.config.Port, d.config.User, d.config.Name)
	default:
		return "unknown"
	}
}

// Placeholder returns the bind parameter syntax of driverName for the n-th argument
func Placeholder(driverName string, n int) string {
	if driverName == TypePostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
