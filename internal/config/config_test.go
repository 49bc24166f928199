package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 3s
postgres:
  host: db.internal
  database: stats_test
kafka:
  enabled: true
  topic: match-events-test
identity:
  base_url: http://gateway:3001
  jwt_secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "stats_test", cfg.Postgres.Database)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "match-events-test", cfg.Kafka.Topic)
	assert.Equal(t, "http://gateway:3001", cfg.Identity.BaseURL)
	assert.Equal(t, "s3cret", cfg.Identity.JWTSecret)

	// Unset fields fall back to defaults
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "stats-consumer", cfg.Kafka.GroupID)
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "hunter2")
	t.Setenv("TEST_REDIS_ADDR", "redis.internal:6379")

	path := writeConfig(t, `
postgres:
  password: ${TEST_PG_PASSWORD}
redis:
  addr: ${TEST_REDIS_ADDR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hunter2", cfg.Postgres.Password)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "match-events", cfg.Kafka.Topic)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 100, cfg.Leaderboard.DefaultLimit)
}

func TestPostgresConnectionString(t *testing.T) {
	pg := PostgresConfig{
		Host:     "db",
		Port:     5433,
		User:     "stats",
		Password: "pw",
		Database: "statsdb",
	}
	assert.Equal(t, "postgres://stats:pw@db:5433/statsdb?sslmode=disable", pg.ConnectionString())

	pg.SSLMode = "require"
	assert.Equal(t, "postgres://stats:pw@db:5433/statsdb?sslmode=require", pg.ConnectionString())
}
