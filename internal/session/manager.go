// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// UserFetcher is the slice of the API client the session needs.
type UserFetcher interface {
	CurrentUser(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context) error
}

// State is a snapshot handed to subscribers.
type State struct {
	User             *model.User
	Loading          bool
	SecurityVerified bool
}

// Options configures a Manager.
type Options struct {
	Logger *slog.Logger

	// VerifyTTL bounds how long MarkSecurityVerified lasts; zero never expires
	VerifyTTL time.Duration

	// Now overrides the clock in tests
	Now func() time.Time
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager holds the authenticated user and the security-verified flag.
type Manager struct {
	mu sync.Mutex

	api    UserFetcher
	logger *slog.Logger
	now    func() time.Time

	// Session tracking
	user    *model.User
	loading bool

	// Security verification (password re-check before sensitive actions)
	verifiedAt time.Time
	verified   bool
	verifyTTL  time.Duration

	// Callbacks
	subscribers map[int]func(State)
	nextSub     int
}

// NewManager creates a manager in the loading state.
func NewManager(api UserFetcher, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		api:         api,
		logger:      logger,
		now:         now,
		loading:     true,
		verifyTTL:   opts.VerifyTTL,
		subscribers: make(map[int]func(State)),
	}
}

// Init issues one current-user request. Success stores the user; any
// failure stores no user. Loading ends either way.
func (m *Manager) Init(ctx context.Context) {
	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("session init cancelled")
		} else {
			m.logger.Info("no active session", "error", err)
		}
		user = nil
	}

	m.mu.Lock()
	m.user = cloneUser(user)
	m.loading = false
	m.mu.Unlock()
	m.notify()
}

// Login stores a user the caller already obtained. No network call.
func (m *Manager) Login(user model.User) {
	m.mu.Lock()
	m.user = &user
	m.loading = false
	m.mu.Unlock()
	m.notify()
}

// Logout asks the server to end the session, then clears the user and the
// security-verified flag whatever the outcome. The server error is returned
// for logging only; local state is already cleared.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.api.Logout(ctx)
	if err != nil {
		m.logger.Warn("server logout failed", "error", err)
	}

	m.mu.Lock()
	m.user = nil
	m.loading = false
	m.verified = false
	m.verifiedAt = time.Time{}
	m.mu.Unlock()
	m.notify()
	return err
}

// =============================================================================
// SECURITY VERIFICATION
// =============================================================================

// MarkSecurityVerified records a successful password re-check.
func (m *Manager) MarkSecurityVerified() {
	m.mu.Lock()
	m.verified = true
	m.verifiedAt = m.now()
	m.mu.Unlock()
	m.notify()
}

// ClearSecurityVerified drops the verification early.
func (m *Manager) ClearSecurityVerified() {
	m.mu.Lock()
	m.verified = false
	m.verifiedAt = time.Time{}
	m.mu.Unlock()
	m.notify()
}

// SecurityVerified reports whether a verification is still valid.
func (m *Manager) SecurityVerified() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.securityVerifiedLocked()
}

func (m *Manager) securityVerifiedLocked() bool {
	if !m.verified {
		return false
	}
	if m.verifyTTL > 0 && m.now().Sub(m.verifiedAt) >= m.verifyTTL {
		return false
	}
	return true
}

// =============================================================================
// ACCESSORS
// =============================================================================

// User returns a copy of the current user, or nil.
func (m *Manager) User() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneUser(m.user)
}

// Loading reports whether Init has not completed yet.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Authenticated reports whether a user is present.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

// IsAdmin reports whether the current user may use admin endpoints.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && (m.user.IsAdmin || m.user.Role == "admin")
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	return State{
		User:             cloneUser(m.user),
		Loading:          m.loading,
		SecurityVerified: m.securityVerifiedLocked(),
	}
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn for state changes and returns its cancel func.
// fn runs synchronously on the goroutine that changed the state.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify() {
	m.mu.Lock()
	state := m.snapshotLocked()
	fns := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
