// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/api"
	"github.com/jeranaias/genstudio-tui/internal/chat"
	"github.com/jeranaias/genstudio-tui/internal/config"
	"github.com/jeranaias/genstudio-tui/internal/session"
	"github.com/jeranaias/genstudio-tui/internal/storage"
)

// logTarget selects where an App logs.
type logTarget int

const (
	// logStderr is used by one-shot commands.
	logStderr logTarget = iota

	// logFile is used by the full-screen TUI, which owns the terminal.
	logFile
)

// App holds the services one command invocation uses. Every dependency is
// built here and passed down explicitly.
type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	API        *api.Client
	Session    *session.Manager
	Cookies    *storage.CookieStore

	// Cache is nil when the offline cache is disabled or cannot be opened.
	Cache *storage.ChatCache

	closers []io.Closer
}

// loadConfig reads the config file named by --config, or the default one,
// and applies --base-url.
func loadConfig(opts *rootOptions) (*config.Config, string, error) {
	path, err := configFilePath(opts)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, &ConfigError{Path: path, Err: err}
	}
	if opts.baseURL != "" {
		cfg.Server.BaseURL = opts.baseURL
		if err := cfg.Validate(); err != nil {
			return nil, path, &ConfigError{Err: err}
		}
	}
	return cfg, path, nil
}

// openApp loads config, builds the logger and API client, and restores the
// saved session cookies.
func openApp(cmd *cobra.Command, opts *rootOptions, target logTarget) (*App, error) {
	cfg, path, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, ConfigPath: path}
	logger, closer, err := newLogger(cfg, opts, target, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	app.Logger = logger
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client, err := api.New(api.Options{
		BaseURL:           cfg.Server.BaseURL,
		Timeout:           cfg.Timeout(),
		Jar:               jar,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
		Logger:            logger,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.API = client

	cookiePath, err := config.ResolvePath(cfg.Session.CookieFile, "cookies.json")
	if err != nil {
		app.Close()
		return nil, &ConfigError{Err: err}
	}
	app.Cookies = storage.NewCookieStore(cookiePath)
	if n, err := app.Cookies.Load(jar, client.BaseURL()); err != nil {
		logger.Warn("failed to restore session cookies", "path", cookiePath, "error", err)
	} else {
		logger.Debug("session cookies restored", "count", n)
	}

	app.Session = session.NewManager(client, session.Options{
		Logger:    logger,
		VerifyTTL: cfg.SecurityVerifyTTL(),
	})
	return app, nil
}

// openCache opens the offline chat list cache when it is enabled. Failure
// only disables the cache.
func (a *App) openCache() {
	if !a.Config.Cache.Enabled {
		return
	}
	path, err := config.ResolvePath(a.Config.Cache.Path, "cache.db")
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0700)
	}
	if err != nil {
		a.Logger.Warn("chat cache disabled", "error", err)
		return
	}
	cache, err := storage.OpenChatCache(path)
	if err != nil {
		a.Logger.Warn("chat cache disabled", "path", path, "error", err)
		return
	}
	a.Cache = cache
	a.closers = append(a.closers, cache)
}

// newStore builds the chat store over the API, mirrored into the cache
// when one is open. Only the full-screen chat fades between chats.
func (a *App) newStore(fade bool) *chat.Store {
	opts := chat.Options{
		Logger:     a.Logger,
		Fade:       -1,
		CacheScope: a.API.BaseURL().String(),
	}
	if fade {
		opts.Fade = a.Config.FadeDelay()
	}
	if a.Cache != nil {
		opts.Cache = a.Cache
	}
	return chat.NewStore(a.API, opts)
}

// requireLogin verifies the saved session and fails when there is none.
func (a *App) requireLogin(ctx context.Context) error {
	a.Session.Init(ctx)
	if !a.Session.Authenticated() {
		return api.ErrUnauthorized
	}
	return nil
}

// requireAdmin verifies the session belongs to an administrator.
func (a *App) requireAdmin(ctx context.Context) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	if !a.Session.IsAdmin() {
		return fmt.Errorf("admin access required: %w", api.ErrForbidden)
	}
	return nil
}

// saveCookies persists the jar so the next invocation stays signed in.
func (a *App) saveCookies() {
	if err := a.Cookies.Save(a.API.Jar(), a.API.BaseURL()); err != nil {
		a.Logger.Warn("failed to save session cookies", "path", a.Cookies.Path(), "error", err)
	}
}

// Close saves cookies and releases the cache and log file.
func (a *App) Close() {
	if a.API != nil && a.Cookies != nil && a.Session != nil && a.Session.Authenticated() {
		a.saveCookies()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil && a.Logger != nil {
		a.Logger.Warn("close failed", "error", err)
	}
}

// newLogger builds the slog logger for target. --verbose forces debug.
func newLogger(cfg *config.Config, opts *rootOptions, target logTarget, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level := cfg.LogLevel()
	out := stderr
	var closer io.Closer

	switch {
	case target == logFile:
		path, err := config.ResolvePath(cfg.Log.File, "genstudio.log")
		if err != nil {
			return nil, nil, &ConfigError{Err: err}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	case !opts.verbose && level < slog.LevelWarn:
		// One-shot commands keep stderr quiet unless asked
		level = slog.LevelWarn
	}
	if opts.verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Log.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(handler).With("version", Version), closer, nil
}
