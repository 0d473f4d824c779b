package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "harborline.db", cfg.Local.Path)
	assert.Equal(t, 3306, cfg.Remote.Database.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.False(t, cfg.Backend.IsSet())
	assert.Same(t, cfg, Get())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harborline.yaml")
	content := []byte(`
local:
  path: /var/lib/harborline/local.db
backend:
  api_key: client-123
  auth_domain: https://auth.example.com
  project_id: fleet
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("HARBORLINE_BACKEND_ORG_KEY", "acme")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/harborline/local.db", cfg.Local.Path)
	assert.True(t, cfg.Backend.IsSet())
	assert.Equal(t, "client-123", cfg.Backend.APIKey)
	assert.Equal(t, "acme", cfg.Backend.OrgKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
