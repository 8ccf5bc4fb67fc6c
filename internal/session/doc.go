// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the authenticated user of the running client.
//
// A Manager is created once at startup and passed to whatever needs it.
// Init resolves the current user from the backend cookie session and never
// fails: any error, 401 included, simply leaves the client logged out.
// Logout always drops local state even when the server call fails.
package session
