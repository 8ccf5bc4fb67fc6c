// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// DefaultChatTitle is the title the server gives a chat until it is renamed.
const DefaultChatTitle = "Novo Chat"

// ChatSession is a conversation thread as listed by the server.
// A session with a zero ID is a local draft that has not been sent yet.
type ChatSession struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// Snippet is the last-message preview returned by search. Derived only.
	Snippet string `json:"snippet,omitempty"`
}

// Saved reports whether the server has assigned an ID.
func (c ChatSession) Saved() bool {
	return !c.ID.IsZero()
}

// DisplayTitle returns the title, falling back to the server default.
func (c ChatSession) DisplayTitle() string {
	if c.Title == "" {
		return DefaultChatTitle
	}
	return c.Title
}

// ChatDetail is a session together with its message history.
type ChatDetail struct {
	ChatSession
	Messages []Message `json:"messages"`
}
