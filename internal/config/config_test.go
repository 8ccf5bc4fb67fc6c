// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 200*time.Millisecond, cfg.FadeDelay())
	require.Equal(t, 15*time.Minute, cfg.SecurityVerifyTTL())
	require.True(t, cfg.UI.Markdown)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://x" }, "server.base_url"},
		{"no host", func(c *Config) { c.Server.BaseURL = "http://" }, "server.base_url"},
		{"timeout too long", func(c *Config) { c.Server.TimeoutSecs = 601 }, "server.timeout_secs"},
		{"negative rps", func(c *Config) { c.Server.RequestsPerSecond = -1 }, "server.requests_per_second"},
		{"unknown model", func(c *Config) { c.Chat.DefaultModel = "gpt-2" }, "chat.default_model"},
		{"hot temperature", func(c *Config) { t := 2.5; c.Chat.Temperature = &t }, "chat.temperature"},
		{"long fade", func(c *Config) { c.Chat.FadeMillis = 5000 }, "chat.fade_millis"},
		{"narrow wrap", func(c *Config) { c.UI.WordWrap = 5 }, "ui.word_wrap"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"verify ttl", func(c *Config) { c.Session.SecurityVerifyMinutes = 0 }, "session.security_verify_minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			require.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	require.Equal(t, Default().Server.BaseURL, cfg.Server.BaseURL)
}

func TestLoadFromPath_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "https://studio.example.com/"

[chat]
default_model = "gpt-4o"
temperature = 0.3

[ui]
markdown = false
`), 0600))

	t.Setenv("GENSTUDIO_CHAT_MAX_TOKENS", "1024")
	t.Setenv("GENSTUDIO_LOG_LEVEL", "debug")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "https://studio.example.com", cfg.Server.BaseURL)
	require.False(t, cfg.UI.Markdown)
	require.Equal(t, 100, cfg.UI.WordWrap)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel())

	m := cfg.ModelConfig()
	require.Equal(t, "gpt-4o", m.ID)
	require.Equal(t, 0.3, m.Temperature)
	require.Equal(t, 1024, m.MaxTokens)
}

func TestReadFile_IgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chat]\nmax_tokens = 64\n"), 0600))
	t.Setenv("GENSTUDIO_CHAT_MAX_TOKENS", "1024")

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Chat.MaxTokens)
	require.Equal(t, Default().Server.BaseURL, cfg.Server.BaseURL)
}

func TestLoadFromPath_InvalidEnv(t *testing.T) {
	t.Setenv("GENSTUDIO_SERVER_TIMEOUT_SECS", "soon")
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	require.Error(t, err)
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\n"), 0600))
	_, err := LoadFromPath(path)
	require.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Server.BaseURL = "https://studio.example.com"
	temp := 0.9
	cfg.Chat.Temperature = &temp

	require.NoError(t, Save(cfg, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Server.BaseURL, loaded.Server.BaseURL)
	require.NotNil(t, loaded.Chat.Temperature)
	require.Equal(t, 0.9, *loaded.Chat.Temperature)
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("server.base_url", "https://a.example.com"))
	v, err := cfg.Get("server.base_url")
	require.NoError(t, err)
	require.Equal(t, "https://a.example.com", v)

	require.NoError(t, cfg.Set("chat.fade_millis", "0"))
	require.Equal(t, 0, cfg.Chat.FadeMillis)

	require.NoError(t, cfg.Set("ui.markdown", "false"))
	require.False(t, cfg.UI.Markdown)

	v, err = cfg.Get("chat.temperature")
	require.NoError(t, err)
	require.Nil(t, v)
	require.NoError(t, cfg.Set("chat.temperature", "0.4"))
	v, err = cfg.Get("chat.temperature")
	require.NoError(t, err)
	require.Equal(t, 0.4, v)

	require.Error(t, cfg.Set("chat.fade_millis", "fast"))
	require.Error(t, cfg.Set("nope.key", "x"))
	_, err = cfg.Get("server")
	require.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	require.Contains(t, keys, "server.base_url")
	require.Contains(t, keys, "chat.temperature")
	require.Contains(t, keys, "session.cookie_file")
	for _, k := range keys {
		_, err := Default().Get(k)
		require.NoError(t, err, k)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Save(Default(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, func(c *Config, err error) {
		if err == nil {
			changes <- c
		}
	}))

	cfg := Default()
	cfg.Chat.DefaultModel = "gpt-4o"
	require.NoError(t, Save(cfg, path))

	select {
	case got := <-changes:
		require.Equal(t, "gpt-4o", got.Chat.DefaultModel)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}
