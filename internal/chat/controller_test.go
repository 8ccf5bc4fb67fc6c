// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/genstudio-tui/internal/api"
	"github.com/jeranaias/genstudio-tui/internal/blob"
	"github.com/jeranaias/genstudio-tui/internal/model"
)

func testModel(t *testing.T) model.ModelConfig {
	t.Helper()
	cfg, ok := model.LookupModel("gpt-4o")
	require.True(t, ok)
	return cfg
}

// blockingGenerator parks GenerateText until release delivers a result.
type blockingGenerator struct {
	called  chan api.GenerateRequest
	release chan result
}

type result struct {
	resp *api.GenerateResponse
	err  error
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{
		called:  make(chan api.GenerateRequest, 1),
		release: make(chan result, 1),
	}
}

func (g *blockingGenerator) generate(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
	g.called <- req
	r := <-g.release
	return r.resp, r.err
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSend_NewChatIsAdoptedAndListed(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		// The turn is on screen before the server answers
		assert.Equal(t, []string{"hello", "<placeholder>"}, contents(s.Messages()))
		assert.Equal(t, Sending, c.State())
		assert.True(t, req.ChatID.IsZero())

		backend.addChat("c1", "hello", "hello", "Hi there")
		return reply("c1", "hello", "Hi there"), nil
	}

	require.NoError(t, c.Send(context.Background(), "hello", nil, testModel(t)))

	assert.Equal(t, Idle, c.State())
	assert.False(t, s.HasPlaceholder())
	assert.Equal(t, model.ID("c1"), s.ActiveID())
	assert.Equal(t, Persisted, s.SessionState())
	assert.Equal(t, []string{"hello", "Hi there"}, contents(s.Messages()))

	sessions := s.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, model.ID("c1"), sessions[0].ID)
	assert.Equal(t, "hello", sessions[0].Title)
}

func TestSend_RequestCarriesModelSettings(t *testing.T) {
	backend := newFakeBackend()
	backend.addChat("c9", "t", "q", "a")
	s := newTestStore(backend)
	require.NoError(t, s.LoadChat(context.Background(), "c9"))
	c := NewController(s, backend, nil, nil)

	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		return reply("c9", req.Prompt, "ok"), nil
	}

	cfg, ok := model.LookupModel("o3-mini")
	require.True(t, ok)
	cfg.Temperature = 0.2
	cfg.MaxTokens = 512
	require.NoError(t, c.Send(context.Background(), "why", nil, cfg))

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, model.ID("c9"), req.ChatID)
	assert.Equal(t, "o3-mini", req.Model)
	assert.Equal(t, 1.0, req.Temperature, "locked models send their fixed temperature")
	assert.Equal(t, 512, req.MaxTokens)
}

func TestSend_EmptyInputIsRejected(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	err := c.Send(context.Background(), "   \n", nil, testModel(t))
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.Messages())
	assert.Empty(t, backend.requests)
}

func TestSend_SecondSendWhileInFlight(t *testing.T) {
	backend := newFakeBackend()
	gen := newBlockingGenerator()
	backend.generate = gen.generate
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- c.Send(ctx, "first", nil, testModel(t)) }()
	<-gen.called

	err := c.Send(ctx, "second", nil, testModel(t))
	assert.ErrorIs(t, err, ErrSendInFlight)
	assert.Equal(t, 1, countPlaceholders(s.Messages()))
	assert.Equal(t, []string{"first", "<placeholder>"}, contents(s.Messages()))

	gen.release <- result{err: errors.New("upstream failed")}
	require.Error(t, <-errc)
	assert.Equal(t, Idle, c.State())
}

func TestSend_FailureKeepsUserMessage(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)
	upstream := &api.Error{Method: "POST", Path: "/api/ai/generate-text", Status: 500, Body: `{"error":"model offline"}`}

	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		return nil, upstream
	}

	err := c.Send(context.Background(), "hello", nil, testModel(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, []string{"hello"}, contents(s.Messages()))
	assert.False(t, s.HasPlaceholder())
	assert.False(t, c.Loading())
	assert.Empty(t, s.Sessions())
}

func TestSend_ParentCancelReturnsContextError(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}

	err := c.Send(ctx, "hello", nil, testModel(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.HasPlaceholder())
	assert.Equal(t, Idle, c.State())
}

func TestSend_ReplyWithoutAssistantDropsPlaceholder(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("reload failed")
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		return &api.GenerateResponse{ChatID: "c1"}, nil
	}

	require.NoError(t, c.Send(context.Background(), "hello", nil, testModel(t)))
	assert.Equal(t, []string{"hello"}, contents(s.Messages()))
	assert.Equal(t, model.ID("c1"), s.ActiveID())
	assert.Equal(t, Persisting, s.SessionState(), "failed reload leaves the chat persisting")
}

// =============================================================================
// ATTACHMENT TESTS
// =============================================================================

func TestSend_ImageAttachmentIsConfirmed(t *testing.T) {
	backend := newFakeBackend()
	// Keep the reconciled messages on screen instead of the reloaded ones
	backend.getErr = errors.New("reload failed")
	s := newTestStore(backend)
	blobs := blob.NewRegistry()
	c := NewController(s, backend, blobs, nil)

	var previewURL string
	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		msgs := s.Messages()
		require.Len(t, msgs, 2)
		require.Len(t, msgs[0].Attachments, 1)
		att := msgs[0].Attachments[0]
		assert.True(t, att.IsPreview)
		assert.True(t, blob.IsBlobURL(att.URL))
		previewURL = att.URL

		require.Len(t, req.Files, 1)
		assert.Equal(t, "cat.png", req.Files[0].Name)
		assert.Equal(t, "image/png", req.Files[0].MimeType)
		body, err := io.ReadAll(req.Files[0].Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("PNGDATA"), body)

		return reply("c1", "look", "a cat", model.Attachment{
			ID:            "42",
			CorrelationID: req.Files[0].CorrelationID,
			Name:          "cat.png",
			MimeType:      "image/png",
		}), nil
	}

	files := []File{{Name: "cat.png", Data: []byte("PNGDATA")}}
	require.NoError(t, c.Send(context.Background(), "look", files, testModel(t)))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	require.Len(t, msgs[0].Attachments, 1)
	att := msgs[0].Attachments[0]
	assert.False(t, att.IsPreview)
	assert.Equal(t, model.ID("42"), att.ID)
	assert.Equal(t, "/api/attachments/42", att.URL)

	_, err := blobs.Resolve(previewURL)
	assert.ErrorIs(t, err, blob.ErrUnknownURL, "preview URL should be released")
	assert.Equal(t, 0, blobs.Len())
}

func TestSend_AttachmentsPairByCorrelationID(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("reload failed")
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		require.Len(t, req.Files, 2)
		// Server stores them in the opposite order
		return reply("c1", "two", "ok",
			model.Attachment{ID: "2", CorrelationID: req.Files[1].CorrelationID, Name: "b.pdf"},
			model.Attachment{ID: "1", CorrelationID: req.Files[0].CorrelationID, Name: "a.png"},
		), nil
	}

	files := []File{
		{Name: "a.png", Data: []byte("a")},
		{Name: "b.pdf", Data: []byte("b")},
	}
	require.NoError(t, c.Send(context.Background(), "two", files, testModel(t)))

	atts := s.Messages()[0].Attachments
	require.Len(t, atts, 2)
	assert.Equal(t, "a.png", atts[0].Name)
	assert.Equal(t, model.ID("1"), atts[0].ID)
	assert.Equal(t, "b.pdf", atts[1].Name)
	assert.Equal(t, model.ID("2"), atts[1].ID)
	assert.Equal(t, "application/pdf", atts[1].MimeType)
}

func TestSend_AttachmentsFallBackToPosition(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("reload failed")
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		return reply("c1", "two", "ok",
			model.Attachment{ID: "10", Name: "a.png"},
			model.Attachment{ID: "11", Name: "b.png"},
		), nil
	}

	files := []File{
		{Name: "a.png", Data: []byte("a")},
		{Name: "b.png", Data: []byte("b")},
	}
	require.NoError(t, c.Send(context.Background(), "two", files, testModel(t)))

	atts := s.Messages()[0].Attachments
	require.Len(t, atts, 2)
	assert.Equal(t, model.ID("10"), atts[0].ID)
	assert.Equal(t, model.ID("11"), atts[1].ID)
	assert.False(t, atts[0].IsPreview)
	assert.False(t, atts[1].IsPreview)
}

func TestSend_AttachmentFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("notes"), 0600))

	backend := newFakeBackend()
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	var got []byte
	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		require.Len(t, req.Files, 1)
		assert.Equal(t, "notes.txt", req.Files[0].Name)
		var err error
		got, err = io.ReadAll(req.Files[0].Body)
		require.NoError(t, err)
		return nil, errors.New("stop here")
	}

	require.Error(t, c.Send(context.Background(), "read this", []File{{Path: path}}, testModel(t)))
	assert.Equal(t, []byte("notes"), got)
}

func TestSend_MissingFileAppendsNothing(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(backend)
	blobs := blob.NewRegistry()
	c := NewController(s, backend, blobs, nil)

	files := []File{
		{Name: "ok.png", Data: []byte("x")},
		{Path: filepath.Join(t.TempDir(), "missing.png")},
	}
	err := c.Send(context.Background(), "hi", files, testModel(t))
	require.Error(t, err)
	assert.Empty(t, s.Messages())
	assert.Equal(t, 0, blobs.Len())
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, backend.requests)
}

// =============================================================================
// STOP TESTS
// =============================================================================

func TestStop_LateReplyIsIgnored(t *testing.T) {
	backend := newFakeBackend()
	gen := newBlockingGenerator()
	backend.generate = gen.generate
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- c.Send(context.Background(), "hello", nil, testModel(t)) }()
	<-gen.called

	require.True(t, c.Stop())
	assert.False(t, s.HasPlaceholder())
	assert.False(t, c.Loading())
	assert.Equal(t, []string{"hello"}, contents(s.Messages()))

	gen.release <- result{resp: reply("c1", "hello", "too late")}
	require.NoError(t, <-errc)

	assert.Equal(t, []string{"hello"}, contents(s.Messages()))
	assert.True(t, s.ActiveID().IsZero())
	assert.Empty(t, s.Sessions())
	assert.False(t, c.Stop(), "nothing left to stop")
}

func TestStop_FromSubscriberBeforeRequest(t *testing.T) {
	backend := newFakeBackend()
	calls := 0
	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		calls++
		return reply("c1", "hello", "late"), nil
	}
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	// Subscribers run on the sending goroutine, as the TUI bridge does
	stopped := false
	cancel := s.Subscribe(func() {
		if !stopped && s.HasPlaceholder() {
			stopped = c.Stop()
		}
	})
	defer cancel()

	require.NoError(t, c.Send(context.Background(), "hello", nil, testModel(t)))

	assert.True(t, stopped, "stop must see the send once the placeholder is visible")
	assert.Zero(t, calls, "a stopped turn is never sent")
	assert.Equal(t, Idle, c.State())
	assert.False(t, s.HasPlaceholder())
	assert.Equal(t, []string{"hello"}, contents(s.Messages()))
	assert.Empty(t, s.Sessions())
}

func TestSend_DeletedChatStaysDeleted(t *testing.T) {
	backend := newFakeBackend()
	backend.addChat("c1", "first", "x")
	gen := newBlockingGenerator()
	backend.generate = gen.generate
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	ctx := context.Background()
	require.NoError(t, s.RefreshList(ctx, ""))
	require.NoError(t, s.LoadChat(ctx, "c1"))

	errc := make(chan error, 1)
	go func() { errc <- c.Send(ctx, "hello", nil, testModel(t)) }()
	<-gen.called

	require.NoError(t, s.Delete(ctx, "c1"))
	require.Empty(t, s.Sessions())

	gen.release <- result{resp: reply("c1", "hello", "late")}
	require.NoError(t, <-errc)

	assert.Empty(t, s.Sessions(), "a reply must not bring a deleted chat back")
	assert.True(t, s.ActiveID().IsZero())
	assert.Empty(t, s.Messages())
	assert.Equal(t, Idle, c.State())
}

func TestSend_SwitchedAwayChatIsUpdatedInPlace(t *testing.T) {
	backend := newFakeBackend()
	backend.addChat("c1", "first", "x")
	backend.addChat("c2", "second", "y")
	gen := newBlockingGenerator()
	backend.generate = gen.generate
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	ctx := context.Background()
	require.NoError(t, s.RefreshList(ctx, ""))
	require.NoError(t, s.LoadChat(ctx, "c1"))

	errc := make(chan error, 1)
	go func() { errc <- c.Send(ctx, "hello", nil, testModel(t)) }()
	<-gen.called
	require.NoError(t, s.LoadChat(ctx, "c2"))

	resp := reply("c1", "hello", "late")
	resp.ChatTitle = "renamed by server"
	gen.release <- result{resp: resp}
	require.NoError(t, <-errc)

	require.Len(t, s.Sessions(), 2)
	got, ok := s.Session("c1")
	require.True(t, ok)
	assert.Equal(t, "renamed by server", got.Title)
	assert.Equal(t, model.ID("c2"), s.ActiveID())
	assert.Equal(t, []string{"y"}, contents(s.Messages()))
}

func TestStop_CancelsRequestContext(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)

	called := make(chan struct{})
	backend.generate = func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
		close(called)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	errc := make(chan error, 1)
	go func() { errc <- c.Send(context.Background(), "hello", nil, testModel(t)) }()
	<-called

	require.True(t, c.Stop())
	require.NoError(t, <-errc, "a stopped send is not an error")
	assert.False(t, s.HasPlaceholder())
}

func TestStop_ThenSendAgain(t *testing.T) {
	backend := newFakeBackend()
	gen := newBlockingGenerator()
	backend.generate = gen.generate
	s := newTestStore(backend)
	c := NewController(s, backend, nil, nil)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- c.Send(ctx, "first", nil, testModel(t)) }()
	<-gen.called
	require.True(t, c.Stop())

	// The stopped request is still parked; a new send must not wait for it
	go func() { errc <- c.Send(ctx, "second", nil, testModel(t)) }()
	<-gen.called
	assert.Equal(t, []string{"first", "second", "<placeholder>"}, contents(s.Messages()))

	gen.release <- result{err: errors.New("first finally failed")}
	gen.release <- result{err: errors.New("second failed")}
	errs := []error{<-errc, <-errc}

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures, "only the live send reports its failure")
	assert.Equal(t, []string{"first", "second"}, contents(s.Messages()))
}

func TestStop_Idle(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(newTestStore(backend), backend, nil, nil)
	assert.False(t, c.Stop())
}

// =============================================================================
// RECONCILE TESTS
// =============================================================================

func TestReconcile_IsIdempotent(t *testing.T) {
	s := newTestStore(newFakeBackend())

	user := model.NewUserMessage("hi", []model.Attachment{{
		CorrelationID: "corr-1",
		Name:          "a.png",
		MimeType:      "image/png",
		URL:           blob.Scheme + "x",
		IsPreview:     true,
	}})
	tr, err := s.beginTurn(user, model.NewPlaceholder())
	require.NoError(t, err)

	resp := reply("c1", "hi", "hello", model.Attachment{ID: "5", CorrelationID: "corr-1"})

	onScreen, released := s.reconcile(tr, resp)
	require.True(t, onScreen)
	assert.Equal(t, []string{blob.Scheme + "x"}, released)
	first := s.Messages()

	onScreen, released = s.reconcile(tr, resp)
	require.True(t, onScreen)
	assert.Empty(t, released)
	assert.Equal(t, first, s.Messages())
	assert.Equal(t, []string{"hi", "hello"}, contents(first))
}

func TestReconcile_AfterSwitchIsNotOnScreen(t *testing.T) {
	backend := newFakeBackend()
	backend.addChat("c2", "other", "x")
	s := newTestStore(backend)

	tr, err := s.beginTurn(model.NewUserMessage("hi", nil), model.NewPlaceholder())
	require.NoError(t, err)
	require.NoError(t, s.LoadChat(context.Background(), "c2"))

	onScreen, _ := s.reconcile(tr, reply("c1", "hi", "hello"))
	assert.False(t, onScreen)
	assert.Equal(t, model.ID("c2"), s.ActiveID())
	assert.Equal(t, []string{"x"}, contents(s.Messages()))
}

func TestBeginTurn_RejectsSecondPlaceholder(t *testing.T) {
	s := newTestStore(newFakeBackend())
	_, err := s.beginTurn(model.NewUserMessage("a", nil), model.NewPlaceholder())
	require.NoError(t, err)
	_, err = s.beginTurn(model.NewUserMessage("b", nil), model.NewPlaceholder())
	assert.ErrorIs(t, err, ErrSendInFlight)
	assert.Equal(t, 1, countPlaceholders(s.Messages()))
}
