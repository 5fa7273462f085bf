package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigFile, "SERVER_PORT", "GIN_MODE", "DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT",
		"DB_USER", "DB_PASSWORD", "DB_NAME", "OPENAI_API_KEY", "OPENAI_MODEL",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "ENVIRONMENT", "STATS_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "tasknest.db", cfg.DBPath)
	assert.Equal(t, "tasknest", cfg.ServiceName)
	assert.Empty(t, cfg.StatsSchedule)
	assert.False(t, cfg.TelemetryEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tasknest.toml")
	content := `
[server]
port = "9090"

[database]
driver = "postgres"
host = "db.internal"
name = "tasks"

[jobs]
stats_schedule = "@hourly"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DB_HOST", "override.internal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "override.internal", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "tasks", cfg.DBName)
	assert.Equal(t, "@hourly", cfg.StatsSchedule)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tasknest.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database]\ndriver = \"mysql\"\n"), 0o600))
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, "3306", cfg.DBPort)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"bad server port", map[string]string{"SERVER_PORT": "99999"}},
		{"bad db port", map[string]string{"DB_DRIVER": "mysql", "DB_PORT": "abc"}},
		{"bad schedule", map[string]string{"STATS_SCHEDULE": "every now and then"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
