// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/genstudio-tui/internal/api"
	"github.com/jeranaias/genstudio-tui/internal/blob"
	"github.com/jeranaias/genstudio-tui/internal/model"
)

// turn identifies the two messages one send appended.
type turn struct {
	chatID        model.ID
	userID        string
	placeholderID string
}

// =============================================================================
// TURN MUTATIONS (CONTROLLER ONLY)
// =============================================================================

// beginTurn appends user and placeholder to the active chat. It refuses
// while another placeholder is pending.
func (s *Store) beginTurn(user, placeholder model.Message) (turn, error) {
	s.mu.Lock()
	if s.placeholderIndexLocked() >= 0 {
		s.mu.Unlock()
		return turn{}, ErrSendInFlight
	}
	t := turn{
		chatID:        s.activeID,
		userID:        user.ID,
		placeholderID: placeholder.ID,
	}
	s.messages = append(s.messages, user.Clone(), placeholder.Clone())
	s.mu.Unlock()
	s.emit()
	return t, nil
}

// dropPlaceholder removes the turn's placeholder if it is still pending
// and reports whether it did. The caller emits the change.
func (s *Store) dropPlaceholder(t turn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.messageIndexLocked(t.placeholderID)
	if i < 0 || !s.messages[i].IsPlaceholder() {
		return false
	}
	s.messages = append(s.messages[:i:i], s.messages[i+1:]...)
	return true
}

// reconcile merges a reply into the turn's messages. It reports whether the
// turn was still on screen and returns the blob URLs that are no longer
// referenced. Applying the same reply twice leaves the list unchanged.
// The caller emits the change.
func (s *Store) reconcile(t turn, resp *api.GenerateResponse) (bool, []string) {
	s.mu.Lock()

	ui := s.messageIndexLocked(t.userID)
	pi := s.messageIndexLocked(t.placeholderID)
	if ui < 0 && pi < 0 {
		s.mu.Unlock()
		return false, nil
	}

	if s.activeID.IsZero() && t.chatID.IsZero() && !resp.ChatID.IsZero() {
		s.activeID = resp.ChatID
		s.persisting = true
	}

	var released []string
	if ui >= 0 {
		if stored, ok := resp.LastUser(); ok {
			released = confirmAttachments(s.messages[ui].Attachments, stored.Attachments)
		}
	}

	if pi >= 0 {
		if reply, ok := resp.LastAssistant(); ok {
			msg := reply.Clone()
			msg.ID = t.placeholderID
			msg.Placeholder = false
			if msg.CreatedAt.IsZero() {
				msg.CreatedAt = s.messages[pi].CreatedAt
				if msg.CreatedAt.IsZero() {
					msg.CreatedAt = time.Now()
				}
			}
			for i := range msg.Attachments {
				msg.Attachments[i] = storedAttachment(msg.Attachments[i])
			}
			s.messages[pi] = msg
		} else if s.messages[pi].IsPlaceholder() {
			s.messages = append(s.messages[:pi:pi], s.messages[pi+1:]...)
		}
	}
	s.mu.Unlock()
	return true, released
}

// confirmAttachments rewrites preview attachments in place from the stored
// list and returns the blob URLs it replaced. Pairing is by correlation id;
// when the server echoes none, it falls back to position.
func confirmAttachments(local, stored []model.Attachment) []string {
	if len(local) == 0 || len(stored) == 0 {
		return nil
	}

	byCorrelation := make(map[string]model.Attachment, len(stored))
	for _, a := range stored {
		if a.CorrelationID != "" {
			byCorrelation[a.CorrelationID] = a
		}
	}
	positional := len(byCorrelation) == 0

	var released []string
	for i := range local {
		if !local[i].IsPreview {
			continue
		}
		var (
			match model.Attachment
			ok    bool
		)
		if positional {
			if i < len(stored) {
				match, ok = stored[i], true
			}
		} else {
			match, ok = byCorrelation[local[i].CorrelationID]
		}
		if !ok || (match.ID.IsZero() && match.URL == "") {
			continue
		}

		if blob.IsBlobURL(local[i].URL) {
			released = append(released, local[i].URL)
		}
		confirmed := storedAttachment(match)
		local[i].ID = confirmed.ID
		local[i].URL = confirmed.URL
		local[i].IsPreview = false
		if local[i].Name == "" {
			local[i].Name = confirmed.Name
		}
		if local[i].MimeType == "" {
			local[i].MimeType = confirmed.MimeType
		}
	}
	return released
}

// storedAttachment fills the retrieval URL of a server attachment.
func storedAttachment(a model.Attachment) model.Attachment {
	if a.URL == "" && !a.ID.IsZero() {
		a.URL = model.AttachmentPath(a.ID)
	}
	a.IsPreview = false
	return a
}

func (s *Store) placeholderIndexLocked() int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].IsPlaceholder() {
			return i
		}
	}
	return -1
}

func (s *Store) messageIndexLocked(id string) int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}
