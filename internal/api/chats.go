// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// ListChats returns the user's chats, optionally filtered by the server-side
// search query q.
func (c *Client) ListChats(ctx context.Context, q string) ([]model.ChatSession, error) {
	path := "/api/chats/"
	if q != "" {
		path += "?q=" + url.QueryEscape(q)
	}
	return getList[model.ChatSession](ctx, c, path, "chats")
}

// GetChat returns a chat together with its message history.
func (c *Client) GetChat(ctx context.Context, id model.ID) (*model.ChatDetail, error) {
	var raw json.RawMessage
	if err := c.DoJSON(ctx, http.MethodGet, idPath("/api/chats/", id, "?with_messages=true"), nil, &raw); err != nil {
		return nil, err
	}
	detail, err := decodeOne[model.ChatDetail](raw, "chat")
	if err != nil {
		return nil, err
	}
	if detail.ID.IsZero() {
		detail.ID = id
	}
	return &detail, nil
}

// RenameChat sets a chat's title.
func (c *Client) RenameChat(ctx context.Context, id model.ID, title string) error {
	body := map[string]string{"title": title}
	return c.DoJSON(ctx, http.MethodPatch, idPath("/api/chats/", id, ""), body, nil)
}

// SetArchived archives or unarchives a chat.
func (c *Client) SetArchived(ctx context.Context, id model.ID, archived bool) error {
	body := map[string]bool{"archived": archived}
	return c.DoJSON(ctx, http.MethodPatch, idPath("/api/chats/", id, "/archive"), body, nil)
}

// DeleteChat removes a chat and its messages.
func (c *Client) DeleteChat(ctx context.Context, id model.ID) error {
	return c.DoJSON(ctx, http.MethodDelete, idPath("/api/chats/", id, ""), nil, nil)
}
