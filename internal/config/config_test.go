package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("PG_HOST", "localhost")
	t.Setenv("PG_USER", "cg")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DATABASE", "cyberguardian")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cyberguardian", cfg.Name)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Session.LockTTL)
	assert.Equal(t, 80, cfg.Badge.MasteryThreshold)
	assert.Equal(t, 20, cfg.Tutor.RequestsPerWindow)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Empty(t, cfg.OAuth.GoogleClientID)
	assert.Equal(t, "host=localhost port=5432 user=cg password=secret dbname=cyberguardian sslmode=disable pool_max_conns=10", cfg.Postgres.DSN())
}

func TestLoadRequiresSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("BADGE_MASTERY_THRESHOLD", "90")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 90, cfg.Badge.MasteryThreshold)
}

func TestLoadPostgresIgnoresOtherGroups(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "cg")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DATABASE", "cyberguardian")
	t.Setenv("JWT_SECRET", "")

	pg, err := LoadPostgres()
	require.NoError(t, err)
	assert.Equal(t, "db", pg.Host)
	assert.Equal(t, 5432, pg.Port)
}
