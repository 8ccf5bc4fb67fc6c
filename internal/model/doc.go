// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the API client,
// the chat store and the terminal views.
//
// # Key Types
//
//   - ChatSession: A persisted (or draft) conversation thread
//   - Message: Single chat turn with role, content and attachments
//   - Attachment: File attached to a message, preview or server-confirmed
//   - User, Plan: Account records used by the session and admin views
//   - Notification, Content, Project: Dashboard list entities
//   - ModelConfig: Text generation model settings
//
// # Usage
//
// Build the optimistic pair for a send:
//
//	user := model.NewUserMessage("hello", nil)
//	pending := model.NewPlaceholder()
//
// Look up a text model:
//
//	cfg, ok := model.LookupModel("gpt-4o-mini")
package model
