package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "noreply@findmydaycare.com", cfg.SendGrid.FromEmail)
	assert.Equal(t, "Find My Daycare", cfg.SendGrid.FromName)
	assert.Equal(t, "https://ckan0.cf.opendata.inter.prod-toronto.ca", cfg.CKAN.BaseURL)
	assert.Equal(t, "licensed-child-care-centres", cfg.CKAN.PackageID)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
server:
  port: 9090
log:
  level: debug
  format: console
data:
  dir: /var/lib/daycare
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/var/lib/daycare", cfg.Data.Dir)
	// Defaults still apply for unset values
	assert.Equal(t, "licensed-child-care-centres", cfg.CKAN.PackageID)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DAYCARE_LOG_LEVEL", "warn")
	t.Setenv("DAYCARE_GOOGLE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "test-key", cfg.Google.APIKey)
}

func TestValidateServe(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 5001
	cfg.Google.APIKey = "key"
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Google.APIKey = ""
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "google.api_key is required")

	cfg.Server.Port = 0
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateFetch(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("fetch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ckan.base_url is required")

	cfg.CKAN.BaseURL = "https://example.org"
	cfg.CKAN.PackageID = "licensed-child-care-centres"
	assert.NoError(t, cfg.Validate("fetch"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
