// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps the client's local state between runs.
//
// # Key Types
//
//   - CookieStore: session cookies per backend, so a login survives restarts
//   - ChatCache: last known chat list per account, shown while offline
//
// # Storage Location
//
// Both live under ~/.genstudio/ by default: cookies.json (mode 0600) and
// cache.db (SQLite through the pure Go modernc.org/sqlite driver).
package storage
