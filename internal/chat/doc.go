// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the conversation state of the client.
//
// A Store holds the chat list and the message list of the active chat. It is
// the only writer of both; the Controller mutates the message list through
// the Store's turn methods and keeps nothing after a send returns.
//
// # Sending
//
// Controller.Send appends the user message and an assistant placeholder
// before the request leaves, so the caller always sees feedback first. At
// most one send is in flight: a second Send while one is pending fails with
// ErrSendInFlight. Stop cancels the pending request, drops the placeholder,
// and makes any late response a no-op.
//
// # Attachments
//
// Outgoing files get a local blob: URL and a correlation id. When the reply
// arrives each preview attachment is matched to the stored attachment with
// the same correlation id and rewritten to the stored URL. A backend that
// does not echo correlation ids is matched by position instead.
//
// # Switching chats
//
// LoadChat hides the message view, fetches, swaps the list, and shows it
// again, so messages of two different chats are never visible together. A
// load that is overtaken by a newer load or a new chat is discarded.
package chat
