// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// AttachmentKind selects how an attachment is previewed.
type AttachmentKind int

const (
	KindOther AttachmentKind = iota
	KindImage
	KindPDF
)

// String returns a short label for the kind.
func (k AttachmentKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	default:
		return "file"
	}
}

// Attachment is a file attached to a message.
//
// While IsPreview is true the URL is a local blob: reference owned by the
// client. Once IsPreview is false the file belongs to server storage and the
// URL points at the retrieval endpoint; it never flips back.
type Attachment struct {
	ID            ID     `json:"id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Name          string `json:"name"`
	MimeType      string `json:"mimetype"`
	URL           string `json:"url,omitempty"`
	IsPreview     bool   `json:"-"`
}

// Kind buckets the mimetype into a preview kind.
func (a Attachment) Kind() AttachmentKind {
	mt := strings.ToLower(a.MimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case mt == "application/pdf":
		return KindPDF
	default:
		return KindOther
	}
}

// AttachmentPath returns the stable retrieval path for a stored attachment.
func AttachmentPath(id ID) string {
	return "/api/attachments/" + id.String()
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in a chat session.
type Message struct {
	ID          string       `json:"-"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`

	// Placeholder marks the transient "assistant is composing" turn.
	// It is never sent to or received from the server.
	Placeholder bool `json:"-"`
}

// NewMessage creates a new message with a generated local ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new user message with the given attachments.
func NewUserMessage(content string, attachments []Attachment) Message {
	msg := NewMessage(RoleUser, content)
	msg.Attachments = attachments
	return msg
}

// NewPlaceholder creates the assistant placeholder shown while a reply is pending.
func NewPlaceholder() Message {
	msg := NewMessage(RoleAssistant, "")
	msg.Placeholder = true
	return msg
}

// IsPlaceholder reports whether the message is the composing sentinel.
func (m Message) IsPlaceholder() bool {
	return m.Placeholder
}

// Clone returns a copy that does not share the attachment slice.
func (m Message) Clone() Message {
	if m.Attachments != nil {
		m.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	return m
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// CloneMessages copies a message list deeply enough that callers cannot
// mutate the original through it.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// AssignIDs gives every message without a local ID a fresh one.
// Messages decoded from the server arrive without local IDs.
func AssignIDs(msgs []Message) {
	for i := range msgs {
		if msgs[i].ID == "" {
			msgs[i].ID = generateID()
		}
	}
}

// generateID creates a unique local message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
