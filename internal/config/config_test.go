package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 50, cfg.CheckInPageSize)
	assert.Equal(t, 100, cfg.ActiveWorkerPageSize)
	assert.Equal(t, "checkins", cfg.Collections()["checkins"])
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("BACKEND", " Postgres ")
	t.Setenv("CHECKIN_PAGE_SIZE", "25")
	t.Setenv("COLLECTION_WORKERS", "staff")
	t.Setenv("IS_LOCAL_DEV", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, 25, cfg.CheckInPageSize)
	assert.True(t, cfg.IsLocalDev)
	assert.Equal(t, "staff", cfg.Collections()["workers"])
}
