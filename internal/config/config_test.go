package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configVars = []string{
	"SERVER_PORT", "API_PREFIX", "LOG_LEVEL", "DB_TYPE", "DB_HOST", "DB_PORT",
	"DB_USER", "DB_PASSWORD", "DB_NAME", "SSE_TICK_INTERVAL",
	"SSE_HEARTBEAT_INTERVAL", "SSE_RETRY_MS",
}

// isolate runs the test from an empty directory with every config variable
// cleared, so neither the developer's .env nor the shell leak in.
func isolate(t *testing.T) string {
	t.Helper()
	for _, v := range configVars {
		t.Setenv(v, "")
		require.NoError(t, os.Unsetenv(v))
	}

	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(cwd); err != nil {
			t.Logf("Failed to restore working directory: %v", err)
		}
	})
	return dir
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "test_value")

	value := getEnv("TEST_ENV_VAR", "default_value")
	assert.Equal(t, "test_value", value)

	value = getEnv("NON_EXISTING_VAR", "default_value")
	assert.Equal(t, "default_value", value)
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8000, config.ServerPort)
	assert.Equal(t, "/api", config.APIPrefix)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "memory", config.DBConfig.Type)
	assert.Equal(t, "localhost", config.DBConfig.Host)
	assert.Equal(t, 5432, config.DBConfig.Port)
	assert.Equal(t, "pokertrack", config.DBConfig.Name)
	assert.Equal(t, 500*time.Millisecond, config.SSE.TickInterval)
	assert.Equal(t, 15*time.Second, config.SSE.HeartbeatInterval)
	assert.Equal(t, 3000, config.SSE.RetryMillis)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolate(t)

	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_TYPE", "mysql")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("SSE_TICK_INTERVAL", "250ms")
	t.Setenv("SSE_HEARTBEAT_INTERVAL", "0s")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, config.ServerPort)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "mysql", config.DBConfig.Type)
	assert.Equal(t, "db.example.com", config.DBConfig.Host)
	assert.Equal(t, 3306, config.DBConfig.Port)
	assert.Equal(t, "testuser", config.DBConfig.User)
	assert.Equal(t, "testpass", config.DBConfig.Password)
	assert.Equal(t, "testdb", config.DBConfig.Name)
	assert.Equal(t, 250*time.Millisecond, config.SSE.TickInterval)
	assert.Equal(t, time.Duration(0), config.SSE.HeartbeatInterval)
}

func TestLoadConfigFromDotEnv(t *testing.T) {
	dir := isolate(t)
	content := "DB_TYPE=postgres\nAPI_PREFIX=/v1\nSSE_RETRY_MS=1000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	// The real environment takes precedence over the file.
	t.Setenv("API_PREFIX", "/override")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", config.DBConfig.Type)
	assert.Equal(t, "/override", config.APIPrefix)
	assert.Equal(t, 1000, config.SSE.RetryMillis)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SERVER_PORT", "not-a-number"},
		{"DB_PORT", "x"},
		{"SSE_TICK_INTERVAL", "soon"},
		{"SSE_TICK_INTERVAL", "0s"},
		{"SSE_HEARTBEAT_INTERVAL", "often"},
		{"SSE_RETRY_MS", "3s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
