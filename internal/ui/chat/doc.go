// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat screen of the genstudio TUI.

The screen is a Bubble Tea model over the services in internal/chat: it
renders whatever the Store holds and hands user actions to the Store and
Controller. It keeps no conversation state of its own.

# Layout

	+---------------------------------------------------------+
	| GenStudio | chat title              model  user  unread |
	+-------------+-------------------------------------------+
	| Chats       | You                                       |
	| search...   |   message                                 |
	| > chat one  | Assistant                                 |
	|   chat two  |   reply (markdown)                        |
	+-------------+-------------------------------------------+
	| > input                                                 |
	| status                                   key hints      |
	+---------------------------------------------------------+

The sidebar disappears below 60 columns. Toasts float in the bottom-right
corner and never take focus.

# Events

Store changes, debounced search results and config reloads arrive through
a bridge channel that one waiting command drains; every handler that
consumes a bridged message re-arms it. Sends run in their own command and
resolve to sendDoneMsg.

# Usage

	screen := chat.New(chat.Deps{
	    Store:      store,
	    Controller: controller,
	    Config:     cfg,
	    ConfigPath: path,
	})
	defer screen.Close()
	_, err := tea.NewProgram(screen, tea.WithAltScreen()).Run()

# Slash commands

/new, /attach <path>, /detach, /model [id], /rename <title>, /archive,
/unarchive, /delete, /stop, /refresh, /help and /quit. Esc stops a pending
reply; switching chats stops it too.
*/
package chat
