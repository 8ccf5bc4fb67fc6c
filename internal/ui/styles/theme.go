// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the chat screen.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND STATUS
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style
	StatusBar   lipgloss.Style
	ShortcutKey lipgloss.Style
	Offline     lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarCursor   lipgloss.Style
	SidebarActive   lipgloss.Style
	SidebarArchived lipgloss.Style
	SearchBox       lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel         lipgloss.Style
	UserBubble        lipgloss.Style
	AssistantLabel    lipgloss.Style
	AssistantBubble   lipgloss.Style
	Placeholder       lipgloss.Style
	AttachmentPreview lipgloss.Style
	AttachmentStored  lipgloss.Style
	EmptyState        lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	Input        lipgloss.Style
	InputFocused lipgloss.Style
	PendingFiles lipgloss.Style

	// ==========================================================================
	// TOASTS
	// ==========================================================================

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style

	Dim lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.HeaderUser = lipgloss.NewStyle().Foreground(TextSecondary)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.Offline = lipgloss.NewStyle().Bold(true).Foreground(Amber)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarCursor = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg)
	t.SidebarActive = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.SidebarArchived = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.SearchBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(UserBubbleBorder)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)
	t.Placeholder = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.AttachmentPreview = lipgloss.NewStyle().Foreground(Amber)
	t.AttachmentStored = lipgloss.NewStyle().Foreground(Emerald)
	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputFocused = t.Input.BorderForeground(Cyan)
	t.PendingFiles = lipgloss.NewStyle().Foreground(Amber)

	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	t.ToastInfo = toast.Foreground(TextInverse).Background(Cyan)
	t.ToastSuccess = toast.Foreground(TextInverse).Background(Emerald)
	t.ToastWarning = toast.Foreground(TextInverse).Background(Amber)
	t.ToastError = toast.Foreground(TextInverse).Background(Rose)

	t.Dim = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// SidebarWidth returns the sidebar column width for the current layout;
// zero means no sidebar.
func (t *Theme) SidebarWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return 0
	case LayoutMedium:
		return 24
	default:
		return 32
	}
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
