// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the genstudio TUI.

All colors are Lip Gloss AdaptiveColor values so light and dark terminals
both stay readable.

# Color System (colors.go)

  - Purple - assistant replies and selections
  - Cyan - brand, user highlights, active chat
  - Emerald - success toasts, confirmed attachments
  - Amber - warnings, pending previews, offline banner
  - Rose - errors

# Theme (theme.go)

Theme groups every lipgloss.Style the chat screen renders:

	theme := styles.NewTheme()
	theme.SetSize(msg.Width, msg.Height)
	header := theme.Header.Render("genstudio")

Layout mode follows the terminal width: the sidebar is hidden in
LayoutNarrow.
*/
package styles
