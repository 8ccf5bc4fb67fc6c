// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "errors"

var (
	// ErrEmptyMessage is returned when neither text nor files were given.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight is returned when a send is attempted while another
	// one is still pending.
	ErrSendInFlight = errors.New("a message is already being sent")

	// ErrStaleLoad is returned by LoadChat when a newer load or a new chat
	// replaced it before it finished; its result was discarded.
	ErrStaleLoad = errors.New("chat load superseded")

	// ErrUnsavedSession is returned when an action needs a server id.
	ErrUnsavedSession = errors.New("chat has no server id")

	// ErrUnknownAction is returned for an unrecognised chat list action.
	ErrUnknownAction = errors.New("unknown chat list action")
)
