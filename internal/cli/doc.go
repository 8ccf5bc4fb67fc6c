// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the genstudio command line.
//
// Running genstudio with no command opens the full-screen chat. Every other
// command is a one-shot operation against the GenStudio server that prints
// a table or, with --json, a JSON envelope:
//
//	{"success": true, "data": ..., "timestamp": "...", "command": "..."}
//
// # Commands Overview
//
// Account:
//   - login, logout, whoami: Session management
//
// Chat:
//   - chat: Full-screen chat, or line-based with --plain
//   - ask: One message, one reply
//   - chats: List, show, rename, archive, restore, delete and export saved chats
//
// Dashboard:
//   - notifications: List and mark notifications
//   - contents: List, download and delete generated contents
//   - projects: List projects
//
// Administration:
//   - admin: Users and plans
//
// Other:
//   - config: Read and edit the config file
//   - version: Build information
//
// Every command builds its services through openApp, so each dependency
// (config, logger, API client, session and caches) is constructed once per
// invocation and passed down explicitly. Exit codes are listed in errors.go.
package cli
