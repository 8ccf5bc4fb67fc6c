// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify caches the user's notification feed and unread count.
//
// Fetch replaces the cache with the server's list. Mutations apply to the
// cache first and are then confirmed with the server; a failed confirmation
// is returned but not rolled back, and the next Fetch restores the
// authoritative state.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// Backend is the slice of the API client the feed needs.
type Backend interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id model.ID) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id model.ID) error
}

// Center is the notification cache.
type Center struct {
	mu      sync.Mutex
	api     Backend
	logger  *slog.Logger
	items   []model.Notification
	unread  int
	lastErr error
	fetched bool
}

// NewCenter creates an empty cache.
func NewCenter(api Backend, logger *slog.Logger) *Center {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Center{api: api, logger: logger}
}

// Fetch replaces the list with the server's. On failure the error is
// logged, kept for Err, and the previous list stays in place.
func (c *Center) Fetch(ctx context.Context) {
	items, err := c.api.ListNotifications(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		c.logger.Error("failed to fetch notifications", "error", err)
		return
	}
	c.items = append([]model.Notification(nil), items...)
	c.unread = countUnread(c.items)
	c.lastErr = nil
	c.fetched = true
}

// MarkRead flags one notification read, then confirms with the server.
func (c *Center) MarkRead(ctx context.Context, id model.ID) error {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id && !c.items[i].IsRead {
			c.items[i].IsRead = true
		}
	}
	c.unread = countUnread(c.items)
	c.mu.Unlock()

	if err := c.api.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return nil
}

// MarkAllRead flags every notification read, then confirms.
func (c *Center) MarkAllRead(ctx context.Context) error {
	c.mu.Lock()
	for i := range c.items {
		c.items[i].IsRead = true
	}
	c.unread = 0
	c.mu.Unlock()

	if err := c.api.MarkAllNotificationsRead(ctx); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete removes one notification, then confirms.
func (c *Center) Delete(ctx context.Context, id model.ID) error {
	c.mu.Lock()
	kept := c.items[:0]
	for _, n := range c.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	c.items = kept
	c.unread = countUnread(c.items)
	c.mu.Unlock()

	if err := c.api.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}

// Items returns a copy of the cached list.
func (c *Center) Items() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Notification(nil), c.items...)
}

// UnreadCount returns the number of unread notifications.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Err returns the error of the last Fetch, or nil.
func (c *Center) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Fetched reports whether a Fetch has ever succeeded.
func (c *Center) Fetched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetched
}

func countUnread(items []model.Notification) int {
	n := 0
	for _, it := range items {
		if !it.IsRead {
			n++
		}
	}
	return n
}
