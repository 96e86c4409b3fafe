// Package config provides configuration management for tars.
// Values come from built-in defaults, then an optional YAML file, then
// environment variables, with later sources taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/atinylittleshell/tars/internal/gate"
	"github.com/atinylittleshell/tars/internal/provider"
)

// ErrMissingCredential is returned when the provider's API key variable is unset.
var ErrMissingCredential = errors.New("environment variable not set")

var defaultModels = map[string]string{
	provider.GeminiProviderName: "gemini-2.0-flash",
	provider.OpenAIProviderName: "gpt-4o-mini",
}

var defaultAPIKeyEnv = map[string]string{
	provider.GeminiProviderName: "GEMINI_API_KEY",
	provider.OpenAIProviderName: "OPENAI_API_KEY",
}

// Duration is a time.Duration written as a Go duration string in YAML ("30s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds everything needed to start a session.
type Config struct {
	// Provider selects the model backend: "gemini" or "openai".
	Provider string `yaml:"provider"`

	// Model is the provider-specific model ID. Empty picks the provider default.
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL"`

	// APIKeyEnv names the environment variable holding the API key.
	// Empty picks GEMINI_API_KEY or OPENAI_API_KEY based on Provider.
	APIKeyEnv string `yaml:"apiKeyEnv"`

	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"topP"`
	TopK        int     `yaml:"topK"`
	MaxTokens   int     `yaml:"maxTokens"`

	SystemPrompt string `yaml:"systemPrompt"`
	Prompt       string `yaml:"prompt"`
	LogLevel     string `yaml:"logLevel"`

	// AllowedCommands replaces the built-in allow-list when non-empty.
	AllowedCommands []string `yaml:"allowedCommands"`
	SudoCommand     string   `yaml:"sudoCommand"`

	// CommandTimeout bounds each command. Zero waits forever.
	CommandTimeout Duration `yaml:"commandTimeout"`

	// Journal enables the local SQLite record of executed commands.
	Journal bool `yaml:"journal"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Provider:    provider.GeminiProviderName,
		Temperature: 0.1,
		TopP:        0.95,
		TopK:        40,
		MaxTokens:   8192,
		Prompt:      "> ",
		LogLevel:    "info",
		SudoCommand: gate.DefaultSudoCommand,
		Journal:     true,
	}
}

// Load reads the YAML file at path on top of the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TARS_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("TARS_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("TARS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for values the rest of the program cannot use.
func (c *Config) Validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown provider %q (expected %q or %q)",
			c.Provider, provider.GeminiProviderName, provider.OpenAIProviderName)
	}
	if c.AllowedCommands != nil && gate.NewAllowList(c.AllowedCommands...).Len() == 0 {
		return errors.New("allowedCommands must name at least one command")
	}
	if c.CommandTimeout < 0 {
		return errors.New("commandTimeout must not be negative")
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel: %w", err)
	}
	return nil
}

// ModelName returns the configured model or the provider's default.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// APIKeyEnvName returns the environment variable that holds the API key.
func (c *Config) APIKeyEnvName() string {
	if c.APIKeyEnv != "" {
		return c.APIKeyEnv
	}
	return defaultAPIKeyEnv[c.Provider]
}

// APIKey reads the credential from the environment.
func (c *Config) APIKey() (string, error) {
	name := c.APIKeyEnvName()
	key := os.Getenv(name)
	if key == "" {
		return "", fmt.Errorf("%s %w", name, ErrMissingCredential)
	}
	return key, nil
}

// AllowList returns the configured allow-list, or the default one.
func (c *Config) AllowList() gate.AllowList {
	if len(c.AllowedCommands) > 0 {
		return gate.NewAllowList(c.AllowedCommands...)
	}
	return gate.DefaultAllowList()
}

// ZapLevel parses LogLevel.
func (c *Config) ZapLevel() zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return level
}

// ModelConfig assembles the provider settings, reading the API key from the environment.
func (c *Config) ModelConfig() (provider.ModelConfig, error) {
	key, err := c.APIKey()
	if err != nil {
		return provider.ModelConfig{}, err
	}
	return provider.ModelConfig{
		Provider:    c.Provider,
		Model:       c.ModelName(),
		APIKey:      key,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		TopP:        c.TopP,
		TopK:        c.TopK,
		MaxTokens:   c.MaxTokens,
	}, nil
}
