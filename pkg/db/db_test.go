package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		expectErr  bool
		driverName string
		masked     string
	}{
		{
			name: "mysql config",
			config: Config{
				Type:     TypeMySQL,
				Host:     "localhost",
				Port:     3306,
				User:     "user",
				Password: "password",
				Name:     "pokertrack",
			},
			driverName: TypeMySQL,
			masked:     "user:***@tcp(localhost:3306)/pokertrack",
		},
		{
			name: "postgres config",
			config: Config{
				Type:     TypePostgres,
				Host:     "localhost",
				Port:     5432,
				User:     "user",
				Password: "password",
				Name:     "pokertrack",
			},
			driverName: TypePostgres,
			masked:     "host=localhost port=5432 user=user password=*** dbname=pokertrack sslmode=disable",
		},
		{
			name:      "invalid driver",
			config:    Config{Type: "invalid"},
			expectErr: true,
		},
		{
			name:      "empty config",
			config:    Config{},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Construction never dials; Connect does.
			conn, err := NewDatabase(tt.config)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driverName, conn.DriverName())
			assert.Equal(t, tt.masked, conn.ConnectionString())
			assert.NotContains(t, conn.ConnectionString(), "password=password")
		})
	}
}

func TestMySQLDSNParsesTime(t *testing.T) {
	conn, err := NewDatabase(Config{Type: TypeMySQL, Host: "db", Port: 3306, User: "u", Password: "p", Name: "n"})
	require.NoError(t, err)

	dsn := conn.(*database).dsn
	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "n", parsed.DBName)
}

func TestConfigSetDefaults(t *testing.T) {
	config := Config{}
	config.SetDefaults()

	assert.Equal(t, 25, config.MaxOpenConns)
	assert.Equal(t, 5, config.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, config.ConnMaxLifetime)
	assert.Equal(t, 5*time.Minute, config.ConnMaxIdleTime)

	custom := Config{MaxOpenConns: 3}
	custom.SetDefaults()
	assert.Equal(t, 3, custom.MaxOpenConns)
}

func TestUnconnectedDatabase(t *testing.T) {
	conn, err := NewDatabase(Config{Type: TypePostgres})
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, conn.Ping(ctx), ErrNoDatabase)
	_, err = conn.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = conn.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.Nil(t, conn.QueryRow(ctx, "SELECT 1"))
	_, err = conn.BeginTx(ctx, nil)
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.NoError(t, conn.Close())
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", Placeholder(TypeMySQL, 1))
	assert.Equal(t, "?", Placeholder(TypeMySQL, 7))
	assert.Equal(t, "$1", Placeholder(TypePostgres, 1))
	assert.Equal(t, "$12", Placeholder(TypePostgres, 12))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1146}))
	assert.False(t, IsDuplicateKey(&pq.Error{Code: "42P01"}))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
	assert.False(t, IsDuplicateKey(nil))
}
