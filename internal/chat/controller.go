// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/genstudio-tui/internal/api"
	"github.com/jeranaias/genstudio-tui/internal/blob"
	"github.com/jeranaias/genstudio-tui/internal/model"
)

// Generator is the slice of the API client the controller needs.
type Generator interface {
	GenerateText(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error)
}

// SendState is the controller's single-flight state.
type SendState int

const (
	Idle SendState = iota
	Sending
)

// String returns the state name.
func (s SendState) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// File is a local file attached to a message. Set Path to read from disk
// or Data for in-memory content.
type File struct {
	Name     string
	MimeType string
	Path     string
	Data     []byte
}

// =============================================================================
// CANCEL TOKEN
// =============================================================================

// pendingSend is the token of the one send in flight.
type pendingSend struct {
	turn   turn
	cancel context.CancelFunc
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller sends chat turns and merges the replies into a Store.
type Controller struct {
	store  *Store
	api    Generator
	blobs  *blob.Registry
	logger *slog.Logger

	mu      sync.Mutex
	state   SendState
	pending *pendingSend
}

// NewController creates a controller writing into store. A nil registry
// gets a private one.
func NewController(store *Store, gen Generator, blobs *blob.Registry, logger *slog.Logger) *Controller {
	if blobs == nil {
		blobs = blob.NewRegistry()
	}
	if logger == nil {
		logger = store.logger
	}
	return &Controller{
		store:  store,
		api:    gen,
		blobs:  blobs,
		logger: logger,
	}
}

// State returns Idle or Sending.
func (c *Controller) State() SendState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a send is in flight.
func (c *Controller) Loading() bool {
	return c.State() == Sending
}

// Send submits one chat turn and blocks until it resolves.
//
// The user message and the placeholder are in the store before the request
// is issued. On success the reply replaces the placeholder, previews are
// confirmed, and the chat is upserted and reloaded. If Stop is called while
// the request is pending, Send returns nil and leaves the store alone. Any
// other failure removes the placeholder, keeps the user message, and is
// returned.
func (c *Controller) Send(ctx context.Context, input string, files []File, cfg model.ModelConfig) error {
	if strings.TrimSpace(input) == "" && len(files) == 0 {
		c.logger.Warn("ignoring empty message")
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.state = Sending
	c.mu.Unlock()

	attachments, uploads, err := c.prepareFiles(files)
	if err != nil {
		c.setIdle()
		return err
	}
	defer closeUploads(uploads)

	user := model.NewUserMessage(input, attachments)
	placeholder := model.NewPlaceholder()

	// The token is live before the turn is visible, so a Stop from a store
	// subscriber always finds it.
	sendCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	token := &pendingSend{
		turn:   turn{userID: user.ID, placeholderID: placeholder.ID},
		cancel: cancel,
	}
	c.mu.Lock()
	c.pending = token
	c.mu.Unlock()

	t, err := c.store.beginTurn(user, placeholder)
	if err != nil {
		c.releaseAttachments(attachments)
		c.mu.Lock()
		if c.pending == token {
			c.pending = nil
			c.state = Idle
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if c.pending != token {
		c.mu.Unlock()
		// Stopped while the turn was being appended
		if c.store.dropPlaceholder(t) {
			c.store.emit()
		}
		return nil
	}
	token.turn = t
	c.mu.Unlock()

	req := api.GenerateRequest{
		ChatID:      t.chatID,
		Prompt:      input,
		Model:       cfg.ID,
		Temperature: cfg.EffectiveTemperature(),
		MaxTokens:   cfg.MaxTokens,
		Files:       uploads,
	}
	c.logger.Debug("sending chat turn", "chat_id", t.chatID, "model", cfg.ID, "files", len(uploads))
	resp, err := c.api.GenerateText(sendCtx, req)

	c.mu.Lock()
	if c.pending != token {
		// Stopped: the placeholder is already gone and the result is ignored
		c.mu.Unlock()
		return nil
	}
	c.pending = nil
	if err != nil {
		c.store.dropPlaceholder(t)
		c.state = Idle
		c.mu.Unlock()
		c.store.emit()
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("send message: %w", err)
	}
	onScreen, released := c.store.reconcile(t, resp)
	c.state = Idle
	c.mu.Unlock()
	c.store.emit()

	for _, url := range released {
		c.blobs.Release(url)
	}

	chatID := resp.ChatID
	if chatID.IsZero() {
		chatID = t.chatID
	}
	if chatID.IsZero() {
		return nil
	}
	session := model.ChatSession{ID: chatID, Title: resp.ChatTitle}
	if !onScreen {
		// The chat was switched away from or deleted meanwhile
		c.store.updateExisting(ctx, session)
		return nil
	}
	if err := c.store.UpdateChatList(ctx, session, ActionAdd, ""); err != nil && !errors.Is(err, ErrStaleLoad) {
		// The reply is already on screen; a failed reload is not a failed send
		c.logger.Warn("failed to reload chat after send", "chat_id", chatID, "error", err)
	}
	return nil
}

// Stop cancels the send in flight. The placeholder is removed at once and
// a late reply is ignored. It reports whether anything was pending.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	token := c.pending
	if token == nil {
		c.mu.Unlock()
		return false
	}
	c.pending = nil
	c.state = Idle
	token.cancel()
	c.store.dropPlaceholder(token.turn)
	c.mu.Unlock()

	c.store.emit()
	c.logger.Debug("send stopped", "chat_id", token.turn.chatID)
	return true
}

// Close stops any pending send and releases every preview URL.
func (c *Controller) Close() {
	c.Stop()
	c.blobs.ReleaseAll()
}

func (c *Controller) setIdle() {
	c.mu.Lock()
	c.state = Idle
	c.pending = nil
	c.mu.Unlock()
}

// prepareFiles registers every file and opens its content. Nothing is
// registered if any file cannot be opened.
func (c *Controller) prepareFiles(files []File) ([]model.Attachment, []api.Upload, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}
	attachments := make([]model.Attachment, 0, len(files))
	uploads := make([]api.Upload, 0, len(files))

	for _, f := range files {
		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		mt := f.MimeType
		if mt == "" {
			mt = mime.TypeByExtension(filepath.Ext(name))
		}
		if mt == "" {
			mt = "application/octet-stream"
		}

		var url string
		if f.Path != "" {
			url = c.blobs.Create(name, mt, f.Path)
		} else {
			url = c.blobs.CreateData(name, mt, f.Data)
		}
		body, err := c.blobs.Open(url)
		if err != nil {
			c.blobs.Release(url)
			c.releaseAttachments(attachments)
			closeUploads(uploads)
			return nil, nil, fmt.Errorf("attach %s: %w", name, err)
		}

		correlationID := uuid.NewString()
		attachments = append(attachments, model.Attachment{
			CorrelationID: correlationID,
			Name:          name,
			MimeType:      mt,
			URL:           url,
			IsPreview:     true,
		})
		uploads = append(uploads, api.Upload{
			CorrelationID: correlationID,
			Name:          name,
			MimeType:      mt,
			Body:          body,
		})
	}
	return attachments, uploads, nil
}

func (c *Controller) releaseAttachments(atts []model.Attachment) {
	for _, a := range atts {
		if blob.IsBlobURL(a.URL) {
			c.blobs.Release(a.URL)
		}
	}
}

func closeUploads(uploads []api.Upload) {
	for _, up := range uploads {
		if rc, ok := up.Body.(io.Closer); ok {
			rc.Close()
		}
	}
}
