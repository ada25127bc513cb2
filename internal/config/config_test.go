package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.ReportTimeout)
	assert.Equal(t, 50, cfg.OneTrust.PageSize)
	assert.Equal(t, 1000, cfg.OneTrust.MaxPages)
	assert.Equal(t, 60*time.Second, cfg.OneTrust.RequestTimeout)
	assert.True(t, cfg.OneTrust.InsecureSkipVerify)
	assert.NotEmpty(t, cfg.OneTrust.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadTokenFromCanonicalEnv(t *testing.T) {
	t.Setenv("ONETRUST_TOKEN", "canonical-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "canonical-token", cfg.OneTrust.Token)
}

func TestCanonicalTokenOverridesPrefixedEnv(t *testing.T) {
	t.Setenv("CTRLREPORT_ONETRUST_TOKEN", "prefixed-token")
	t.Setenv("ONETRUST_TOKEN", "canonical-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "canonical-token", cfg.OneTrust.Token)
}

func TestLoadPortFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadPrefixedServerPort(t *testing.T) {
	t.Setenv("CTRLREPORT_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestBarePortOverridesPrefixed(t *testing.T) {
	t.Setenv("CTRLREPORT_SERVER_PORT", "7070")
	t.Setenv("PORT", "9091")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.Server.Port)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT value")
}

func TestLoadPrefixedEnvOverrides(t *testing.T) {
	t.Setenv("CTRLREPORT_ONETRUST_BASE_URL", "https://tenant.example.com/api/search")
	t.Setenv("CTRLREPORT_ONETRUST_MAX_PAGES", "25")
	t.Setenv("CTRLREPORT_ONETRUST_INSECURE_SKIP_VERIFY", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://tenant.example.com/api/search", cfg.OneTrust.BaseURL)
	assert.Equal(t, 25, cfg.OneTrust.MaxPages)
	assert.False(t, cfg.OneTrust.InsecureSkipVerify)
}

func TestLoadFromFileEnvWins(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
onetrust:
  token: file-token
`), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	t.Run("file fills missing token", func(t *testing.T) {
		t.Setenv("ONETRUST_TOKEN", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "file-token", cfg.OneTrust.Token)
	})

	t.Run("env token wins over file", func(t *testing.T) {
		t.Setenv("ONETRUST_TOKEN", "env-token")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "env-token", cfg.OneTrust.Token)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.OneTrust.PageSize = 0 },
			wantErr: "page size must be positive",
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.OneTrust.MaxPages = 0 },
			wantErr: "max pages must be positive",
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.OneTrust.BaseURL = "" },
			wantErr: "base URL must be set",
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.OneTrust.RequestTimeout = 0 },
			wantErr: "request timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}
