// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders a saved chat as a standalone document.
//
// # Supported Formats
//
//   - Markdown: YAML front matter, one section per turn
//   - HTML: Single file with embedded CSS, dark or light theme
//   - JSON: The chat record as returned by the server
//
// # Usage
//
//	exp, err := export.New(export.FormatMarkdown, nil)
//	if err != nil {
//	    return err
//	}
//	data, err := exp.Export(detail)
//	name := export.FileName(detail.ChatSession, exp, time.Now())
package export
