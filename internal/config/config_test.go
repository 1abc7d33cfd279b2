package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Oracle.Provider)
	assert.InDelta(t, 0.7, cfg.Oracle.Temperature, 0.0001)
	assert.Equal(t, 4096, cfg.Oracle.MaxTokens)
	assert.Equal(t, 10, cfg.Oracle.MaxContextFiles)
	assert.Equal(t, 256, cfg.Scanner.MaxDepth)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Addr)
	assert.Empty(t, cfg.Server.MetricsAddr)
	assert.Empty(t, cfg.Database.Path)
}

func TestLoadFromConfigDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cli-editor"), 0o755))
	yaml := `
oracle:
  provider: claude
  model: sonnet
  max_context_files: 4
log:
  level: debug
  development: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cli-editor", "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, cfg.Oracle.Provider)
	assert.Equal(t, "sonnet", cfg.Oracle.Model)
	assert.Equal(t, 4, cfg.Oracle.MaxContextFiles)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CLI_EDITOR_SERVER_ADDR", ":9090")
	t.Setenv("CLI_EDITOR_SCANNER_MAX_DEPTH", "12")
	t.Setenv("CLI_EDITOR_SERVER_METRICS_ADDR", ":9091")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Oracle.APIKey)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.Scanner.MaxDepth)
	assert.Equal(t, ":9091", cfg.Server.MetricsAddr)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"openai needs key", func(c *Config) {}, "oracle.api_key"},
		{"unknown provider", func(c *Config) { c.Oracle.Provider = "bard" }, "oracle.provider"},
		{"zero context files", func(c *Config) { c.Oracle.APIKey = "k"; c.Oracle.MaxContextFiles = 0 }, "oracle.max_context_files"},
		{"too many context files", func(c *Config) { c.Oracle.APIKey = "k"; c.Oracle.MaxContextFiles = 50 }, "oracle.max_context_files"},
		{"zero depth", func(c *Config) { c.Oracle.APIKey = "k"; c.Scanner.MaxDepth = 0 }, "scanner.max_depth"},
		{"metrics on api addr", func(c *Config) { c.Oracle.APIKey = "k"; c.Server.MetricsAddr = c.Server.Addr }, "server.metrics_addr"},
		{"valid", func(c *Config) { c.Oracle.APIKey = "k" }, ""},
		{"separate metrics addr", func(c *Config) { c.Oracle.APIKey = "k"; c.Server.MetricsAddr = "127.0.0.1:9091" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}
