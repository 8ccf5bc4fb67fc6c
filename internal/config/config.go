// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GENSTUDIO_"

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the main configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server" json:"server" envPrefix:"SERVER_"`
	Chat    ChatConfig    `toml:"chat" json:"chat" envPrefix:"CHAT_"`
	UI      UIConfig      `toml:"ui" json:"ui" envPrefix:"UI_"`
	Log     LogConfig     `toml:"log" json:"log" envPrefix:"LOG_"`
	Cache   CacheConfig   `toml:"cache" json:"cache" envPrefix:"CACHE_"`
	Session SessionConfig `toml:"session" json:"session" envPrefix:"SESSION_"`
}

// ServerConfig locates the backend.
type ServerConfig struct {
	// BaseURL is the backend origin (e.g. https://studio.example.com)
	BaseURL string `toml:"base_url" json:"base_url" env:"BASE_URL"`

	// TimeoutSecs bounds each request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" env:"TIMEOUT_SECS"`

	// RequestsPerSecond paces client requests; 0 disables pacing
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int     `toml:"burst" json:"burst" env:"BURST"`
}

// ChatConfig holds chat defaults.
type ChatConfig struct {
	// DefaultModel is a model id from the built-in catalogue
	DefaultModel string `toml:"default_model" json:"default_model" env:"DEFAULT_MODEL"`

	// Temperature overrides the model's default when set
	Temperature *float64 `toml:"temperature,omitempty" json:"temperature,omitempty" env:"TEMPERATURE"`

	// MaxTokens overrides the model's budget when non-zero
	MaxTokens int `toml:"max_tokens" json:"max_tokens" env:"MAX_TOKENS"`

	// FadeMillis is the message view transition when switching chats
	FadeMillis int `toml:"fade_millis" json:"fade_millis" env:"FADE_MILLIS"`

	// SearchDebounceMillis delays chat search after the last keystroke
	SearchDebounceMillis int `toml:"search_debounce_millis" json:"search_debounce_millis" env:"SEARCH_DEBOUNCE_MILLIS"`
}

// UIConfig holds terminal display settings.
type UIConfig struct {
	Markdown     bool `toml:"markdown" json:"markdown" env:"MARKDOWN"`
	WordWrap     int  `toml:"word_wrap" json:"word_wrap" env:"WORD_WRAP"`
	ShowArchived bool `toml:"show_archived" json:"show_archived" env:"SHOW_ARCHIVED"`
}

// LogConfig selects the log destination.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level" env:"LEVEL"`

	// Format is text or json
	Format string `toml:"format" json:"format" env:"FORMAT"`

	// File receives TUI logs; empty means ~/.genstudio/genstudio.log
	File string `toml:"file" json:"file" env:"FILE"`
}

// CacheConfig controls the offline chat list cache.
type CacheConfig struct {
	Enabled bool `toml:"enabled" json:"enabled" env:"ENABLED"`

	// Path is the SQLite file; empty means ~/.genstudio/cache.db
	Path string `toml:"path" json:"path" env:"PATH"`
}

// SessionConfig controls local session state.
type SessionConfig struct {
	// CookieFile stores session cookies; empty means ~/.genstudio/cookies.json
	CookieFile string `toml:"cookie_file" json:"cookie_file" env:"COOKIE_FILE"`

	// SecurityVerifyMinutes is how long a password re-check stays valid
	SecurityVerifyMinutes int `toml:"security_verify_minutes" json:"security_verify_minutes" env:"SECURITY_VERIFY_MINUTES"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:           "http://localhost:5000",
			TimeoutSecs:       60,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Chat: ChatConfig{
			DefaultModel:         model.DefaultModelID,
			FadeMillis:           200,
			SearchDebounceMillis: 300,
		},
		UI: UIConfig{
			Markdown: true,
			WordWrap: 100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Session: SessionConfig{
			SecurityVerifyMinutes: 15,
		},
	}
}

// SetDefaults fills zero values that have no valid zero meaning.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = d.Server.BaseURL
	}
	c.Server.BaseURL = strings.TrimSuffix(c.Server.BaseURL, "/")
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = d.Server.TimeoutSecs
	}
	if c.Chat.DefaultModel == "" {
		c.Chat.DefaultModel = d.Chat.DefaultModel
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Session.SecurityVerifyMinutes == 0 {
		c.Session.SecurityVerifyMinutes = d.Session.SecurityVerifyMinutes
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the genstudio state directory. GENSTUDIO_HOME overrides it.
func Dir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".genstudio"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ResolvePath returns configured when set, else name inside Dir.
func ResolvePath(configured, name string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the default config file, falling back to defaults when it
// does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path. A missing file yields the
// defaults plus environment overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile decodes path over the defaults without environment overrides
// or validation, for editing the file in place. A missing file yields the
// defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies GENSTUDIO_* environment variables, e.g.
// GENSTUDIO_SERVER_BASE_URL or GENSTUDIO_CHAT_DEFAULT_MODEL.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to path as TOML with 0600 permissions.
func Save(cfg *Config, path string) error {
	err := util.AtomicWrite(path, 0600, func(w io.Writer) error {
		io.WriteString(w, "# genstudio configuration file\n")
		io.WriteString(w, "# Environment variables (GENSTUDIO_*) override these values\n\n")
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if u, err := url.Parse(c.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("server.base_url", "invalid URL '%s', must be http(s)://host", c.Server.BaseURL)
	}
	if c.Server.TimeoutSecs < 1 || c.Server.TimeoutSecs > 600 {
		add("server.timeout_secs", "must be between 1 and 600, got %d", c.Server.TimeoutSecs)
	}
	if c.Server.RequestsPerSecond < 0 {
		add("server.requests_per_second", "cannot be negative")
	}
	if c.Server.Burst < 0 {
		add("server.burst", "cannot be negative")
	}

	// Chat
	if _, ok := model.LookupModel(c.Chat.DefaultModel); !ok {
		add("chat.default_model", "unknown model '%s', must be one of: %s",
			c.Chat.DefaultModel, strings.Join(model.ModelIDs(), ", "))
	}
	if t := c.Chat.Temperature; t != nil && (*t < 0 || *t > 2) {
		add("chat.temperature", "must be between 0 and 2, got %v", *t)
	}
	if c.Chat.MaxTokens < 0 {
		add("chat.max_tokens", "cannot be negative")
	}
	if c.Chat.FadeMillis < 0 || c.Chat.FadeMillis > 2000 {
		add("chat.fade_millis", "must be between 0 and 2000, got %d", c.Chat.FadeMillis)
	}
	if c.Chat.SearchDebounceMillis < 0 || c.Chat.SearchDebounceMillis > 5000 {
		add("chat.search_debounce_millis", "must be between 0 and 5000, got %d", c.Chat.SearchDebounceMillis)
	}

	// UI
	if c.UI.WordWrap != 0 && (c.UI.WordWrap < 20 || c.UI.WordWrap > 500) {
		add("ui.word_wrap", "must be 0 (terminal width) or between 20 and 500, got %d", c.UI.WordWrap)
	}

	// Log
	if _, err := parseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		add("log.format", "invalid format '%s', must be one of: text, json", c.Log.Format)
	}

	// Session
	if c.Session.SecurityVerifyMinutes < 1 || c.Session.SecurityVerifyMinutes > 24*60 {
		add("session.security_verify_minutes", "must be between 1 and 1440, got %d", c.Session.SecurityVerifyMinutes)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// FadeDelay returns the chat switch transition delay.
func (c *Config) FadeDelay() time.Duration {
	return time.Duration(c.Chat.FadeMillis) * time.Millisecond
}

// SearchDebounce returns the chat search debounce delay.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.Chat.SearchDebounceMillis) * time.Millisecond
}

// SecurityVerifyTTL returns how long a security verification lasts.
func (c *Config) SecurityVerifyTTL() time.Duration {
	return time.Duration(c.Session.SecurityVerifyMinutes) * time.Minute
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	lvl, _ := parseLevel(c.Log.Level)
	return lvl
}

// ModelConfig resolves the configured default model with any temperature
// and token overrides applied.
func (c *Config) ModelConfig() model.ModelConfig {
	m, ok := model.LookupModel(c.Chat.DefaultModel)
	if !ok {
		m = model.Models[model.DefaultModelID]
	}
	return c.ApplyOverrides(m)
}

// ApplyOverrides applies the configured temperature and token overrides
// to m.
func (c *Config) ApplyOverrides(m model.ModelConfig) model.ModelConfig {
	if c.Chat.Temperature != nil {
		m.Temperature = *c.Chat.Temperature
	}
	if c.Chat.MaxTokens > 0 {
		m.MaxTokens = c.Chat.MaxTokens
	}
	return m
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid level '%s', must be one of: debug, info, warn, error", s)
	}
	return lvl, nil
}
