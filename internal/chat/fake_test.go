// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/genstudio-tui/internal/api"
	"github.com/jeranaias/genstudio-tui/internal/model"
)

// fakeBackend is an in-memory chat server.
type fakeBackend struct {
	mu sync.Mutex

	chats   map[model.ID]*model.ChatDetail
	list    []model.ChatSession
	listErr error
	getErr  error
	opErr   error

	// getHook runs before GetChat answers; it may block
	getHook func(ctx context.Context, id model.ID)

	// generate answers GenerateText
	generate func(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error)

	requests []api.GenerateRequest
	gets     []model.ID
	ops      []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{chats: make(map[model.ID]*model.ChatDetail)}
}

func (f *fakeBackend) addChat(id model.ID, title string, contents ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	detail := &model.ChatDetail{ChatSession: model.ChatSession{ID: id, Title: title}}
	for i, c := range contents {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		detail.Messages = append(detail.Messages, model.Message{Role: role, Content: c})
	}
	f.chats[id] = detail
	f.list = append(f.list, detail.ChatSession)
}

func (f *fakeBackend) ListChats(ctx context.Context, q string) ([]model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.ChatSession(nil), f.list...), nil
}

func (f *fakeBackend) GetChat(ctx context.Context, id model.ID) (*model.ChatDetail, error) {
	f.mu.Lock()
	f.gets = append(f.gets, id)
	hook := f.getHook
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	detail, ok := f.chats[id]
	if !ok {
		return nil, &api.Error{Method: "GET", Path: "/api/chats/" + id.String(), Status: 404}
	}
	copied := *detail
	copied.Messages = model.CloneMessages(detail.Messages)
	return &copied, nil
}

func (f *fakeBackend) RenameChat(ctx context.Context, id model.ID, title string) error {
	return f.record("rename " + id.String() + " " + title)
}

func (f *fakeBackend) SetArchived(ctx context.Context, id model.ID, archived bool) error {
	if archived {
		return f.record("archive " + id.String())
	}
	return f.record("unarchive " + id.String())
}

func (f *fakeBackend) DeleteChat(ctx context.Context, id model.ID) error {
	return f.record("delete " + id.String())
}

func (f *fakeBackend) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErr != nil {
		return f.opErr
	}
	f.ops = append(f.ops, op)
	return nil
}

func (f *fakeBackend) GenerateText(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gen := f.generate
	f.mu.Unlock()
	if gen == nil {
		return nil, errors.New("no generator configured")
	}
	return gen(ctx, req)
}

// reply builds a server response for prompt with an assistant answer.
func reply(chatID model.ID, prompt, answer string, atts ...model.Attachment) *api.GenerateResponse {
	return &api.GenerateResponse{
		ChatID:    chatID,
		ChatTitle: prompt,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: prompt, Attachments: atts},
			{Role: model.RoleAssistant, Content: answer},
		},
	}
}

func newTestStore(backend *fakeBackend) *Store {
	return NewStore(backend, Options{Fade: -1})
}

func contents(msgs []model.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.IsPlaceholder() {
			out = append(out, "<placeholder>")
			continue
		}
		out = append(out, m.Content)
	}
	return out
}

func countPlaceholders(msgs []model.Message) int {
	n := 0
	for _, m := range msgs {
		if m.IsPlaceholder() {
			n++
		}
	}
	return n
}
