package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"TARS_PROVIDER", "TARS_MODEL", "TARS_LOG_LEVEL"} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName())
	assert.Equal(t, "GEMINI_API_KEY", cfg.APIKeyEnvName())
	assert.InDelta(t, 0.1, cfg.Temperature, 1e-9)
	assert.InDelta(t, 0.95, cfg.TopP, 1e-9)
	assert.Equal(t, 40, cfg.TopK)
	assert.Equal(t, 8192, cfg.MaxTokens)
	assert.Equal(t, "> ", cfg.Prompt)
	assert.Equal(t, "sudo", cfg.SudoCommand)
	assert.True(t, cfg.Journal)
	assert.Zero(t, cfg.CommandTimeout)
	assert.True(t, cfg.AllowList().Contains("ls"))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
provider: openai
model: gpt-4o
baseURL: http://localhost:8080/v1
temperature: 0.3
allowedCommands: [ls, pwd, ls]
sudoCommand: doas
commandTimeout: 30s
journal: false
logLevel: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.ModelName())
	assert.Equal(t, "OPENAI_API_KEY", cfg.APIKeyEnvName())
	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseURL)
	assert.InDelta(t, 0.3, cfg.Temperature, 1e-9)
	assert.InDelta(t, 0.95, cfg.TopP, 1e-9, "unset fields keep defaults")
	assert.Equal(t, []string{"ls", "pwd"}, cfg.AllowList().Names())
	assert.Equal(t, "doas", cfg.SudoCommand)
	assert.Equal(t, Duration(30*time.Second), cfg.CommandTimeout)
	assert.False(t, cfg.Journal)
	assert.Equal(t, zap.DebugLevel, cfg.ZapLevel().Level())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "provider: openai\nmodel: gpt-4o\n")
	t.Setenv("TARS_PROVIDER", "gemini")
	t.Setenv("TARS_MODEL", "gemini-2.5-pro")
	t.Setenv("TARS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.ModelName())
	assert.Equal(t, zap.WarnLevel, cfg.ZapLevel().Level())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown provider", "provider: claude\n", "unknown provider"},
		{"empty allow-list", "allowedCommands: ['', ' ']\n", "allowedCommands"},
		{"bad duration", "commandTimeout: soon\n", "invalid duration"},
		{"negative duration", "commandTimeout: -1s\n", "negative"},
		{"bad log level", "logLevel: chatty\n", "logLevel"},
		{"malformed yaml", "provider: [\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAPIKey(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("GEMINI_API_KEY", "")
	_, err := cfg.APIKey()
	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.EqualError(t, err, "GEMINI_API_KEY environment variable not set")

	t.Setenv("GEMINI_API_KEY", "secret")
	mc, err := cfg.ModelConfig()
	require.NoError(t, err)
	assert.Equal(t, "secret", mc.APIKey)
	assert.Equal(t, "gemini", mc.Provider)
	assert.Equal(t, "gemini-2.0-flash", mc.Model)
	assert.Equal(t, 40, mc.TopK)

	cfg.APIKeyEnv = "MY_KEY"
	t.Setenv("MY_KEY", "other")
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "other", key)
}
