// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the CLI and the TUI:
// crash-safe file writes for the local state files and display-width
// aware truncation for terminal tables.
package util
