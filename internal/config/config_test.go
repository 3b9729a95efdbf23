package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/venturelens")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 0, cfg.RunWorkers)
	assert.Equal(t, 45*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, 90*time.Second, cfg.AssemblyTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/venturelens")
	t.Setenv("RUN_WORKERS", "4")
	t.Setenv("ASSEMBLY_TIMEOUT", "30s")
	t.Setenv("LISTEN_ADDR", ":9090")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 4, cfg.RunWorkers)
	assert.Equal(t, 30*time.Second, cfg.AssemblyTimeout)
	assert.Equal(t, ":9090", cfg.ListenAddr)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg, err := Load()
	assert.Error(t, err)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestGetenvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("RUN_WORKERS", "many")
	assert.Equal(t, 2, getenvInt("RUN_WORKERS", 2))
}
