// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	chatcore "github.com/jeranaias/genstudio-tui/internal/chat"
	"github.com/jeranaias/genstudio-tui/internal/config"
)

// =============================================================================
// STORE MESSAGES
// =============================================================================

// storeChangedMsg is delivered after the chat store changed.
type storeChangedMsg struct{}

// =============================================================================
// SEND MESSAGES
// =============================================================================

// sendDoneMsg reports how a Send resolved. A stopped send resolves with a
// nil error.
type sendDoneMsg struct {
	err error
}

// =============================================================================
// CHAT LIST MESSAGES
// =============================================================================

// listRefreshedMsg reports a chat list fetch, with or without a query.
type listRefreshedMsg struct {
	query string
	err   error
}

// chatLoadedMsg reports a LoadChat or CreateNewChat.
type chatLoadedMsg struct {
	err error
}

// actionDoneMsg reports a rename, archive, unarchive or delete.
type actionDoneMsg struct {
	action chatcore.Action
	title  string
	err    error
}

// =============================================================================
// BACKGROUND MESSAGES
// =============================================================================

// notificationsFetchedMsg is delivered after the notification center
// refreshed.
type notificationsFetchedMsg struct{}

// configReloadedMsg carries a config file reload.
type configReloadedMsg struct {
	cfg *config.Config
	err error
}
