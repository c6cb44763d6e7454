package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Scheduling.ConflictWindowMinutes)
	assert.Equal(t, 7*24*time.Hour, cfg.Sharing.InviteTTL)
	assert.Equal(t, "careconnect.events", cfg.Redis.Channel)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
database:
  host: db.local
  name: careconnect
sharing:
  invite_ttl: 48h
scheduling:
  conflict_window_minutes: 45
jwt:
  secret: from-file
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("CARECONNECT_DB_HOST", "db.internal")
	t.Setenv("CARECONNECT_JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "careconnect", cfg.Database.Name)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 48*time.Hour, cfg.Sharing.InviteTTL)
	assert.Equal(t, 45, cfg.Scheduling.ConflictWindowMinutes)
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
}

func TestLoadConfig_RejectsNegativeWindow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("scheduling:\n  conflict_window_minutes: -1\n"), 0o600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
