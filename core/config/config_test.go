package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 30, cfg.Remote.TimeoutSeconds)
	assert.Equal(t, 3, cfg.Remote.MaxRetries)
	assert.False(t, cfg.Queue.Enabled)
	assert.Equal(t, "items_planning", cfg.Queue.Name)
	assert.False(t, cfg.Reconcile.StrictCleanup)
	assert.Equal(t, "reports", cfg.Storage.ReportPrefix)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "REMOTE_BASE_URL=http://eform.local\nRECONCILE_SITE_IDS=1,2\nQUEUE_ENABLED=true\nDATABASE_PORT=3307\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("REMOTE_BASE_URL")
		os.Unsetenv("RECONCILE_SITE_IDS")
		os.Unsetenv("QUEUE_ENABLED")
		os.Unsetenv("DATABASE_PORT")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://eform.local", cfg.Remote.BaseURL)
	assert.Equal(t, "1,2", cfg.Reconcile.SiteIDs)
	assert.True(t, cfg.Queue.Enabled)
	assert.Equal(t, 3307, cfg.Database.Port)
}
