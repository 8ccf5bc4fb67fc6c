// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/ui/components"
	"github.com/jeranaias/genstudio-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	body := lipgloss.NewStyle().
		Width(m.viewport.Width).
		Height(m.viewport.Height).
		MaxHeight(m.viewport.Height).
		Render(m.viewport.View())
	if sw := m.theme.SidebarWidth(); sw > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(sw, m.viewport.Height), body)
	}

	baseView := lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)

	// Toasts float over the bottom-right corner and never take focus
	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		return m.overlayToasts(baseView, components.RenderToastStack(toasts, 0, 0, m.now()))
	}
	return baseView
}

// overlayToasts draws toastView over the bottom-right corner of baseView,
// leaving the status bar visible.
func (m Model) overlayToasts(baseView, toastView string) string {
	baseLines := strings.Split(baseView, "\n")
	toastLines := strings.Split(toastView, "\n")

	toastWidth := 0
	for _, line := range toastLines {
		toastWidth = max(toastWidth, lipgloss.Width(line))
	}

	startRow := len(baseLines) - len(toastLines) - 1
	if startRow < 0 {
		startRow = 0
	}
	cut := m.width - toastWidth
	if cut < 0 {
		cut = 0
	}

	for i, toastLine := range toastLines {
		row := startRow + i
		if row >= len(baseLines) {
			break
		}
		base := ansi.Truncate(baseLines[row], cut, "")
		if pad := cut - lipgloss.Width(base); pad > 0 {
			base += strings.Repeat(" ", pad)
		}
		baseLines[row] = base + toastLine
	}
	return strings.Join(baseLines, "\n")
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	left := m.theme.HeaderTitle.Render("GenStudio")
	if s, ok := m.store.Session(m.store.ActiveID()); ok {
		left += " " + m.theme.Dim.Render("|") + " " + util.SingleLine(s.DisplayTitle())
	} else {
		left += " " + m.theme.Dim.Render("| new chat")
	}

	var right []string
	right = append(right, m.modelCfg.Label)
	if m.notes != nil {
		if n := m.notes.UnreadCount(); n > 0 {
			right = append(right, strconv.Itoa(n)+" unread")
		}
	}
	if m.sess != nil {
		if u := m.sess.User(); u != nil {
			right = append(right, m.theme.HeaderUser.Render(u.DisplayName()))
		}
	}
	rightText := strings.Join(right, "  ")

	inner := m.width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 {
		left = ansi.Truncate(left, max(inner-lipgloss.Width(rightText)-1, 0), "...")
		gap = 1
	}
	return m.theme.Header.
		Width(m.width).
		MaxWidth(m.width).
		Render(left + strings.Repeat(" ", gap) + rightText)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar(width, height int) string {
	inner := width - 3 // padding and right border
	if inner < 4 {
		inner = 4
	}

	title := "Chats"
	if m.showArchived {
		title = "All chats"
	}
	lines := []string{m.theme.SidebarTitle.Render(title)}

	if m.focus == FocusSearch || m.search.Value() != "" {
		lines = append(lines, ansi.Truncate(m.search.View(), inner, ""))
	}

	activeID := m.store.ActiveID()
	if activeID.IsZero() {
		lines = append(lines, m.theme.SidebarActive.Render(util.TruncateWidth("+ New chat", inner)))
	}

	items := m.SidebarItems()
	if len(items) == 0 && !m.store.LoadingChat() {
		lines = append(lines, m.theme.Dim.Render("No chats"))
	}

	// Scroll the list so the cursor stays visible
	rows := height - len(lines)
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}

	for i := start; i < len(items) && i < start+rows; i++ {
		s := items[i]
		label := util.TruncateWidth(util.SingleLine(s.DisplayTitle()), inner)
		style := m.theme.SidebarItem
		switch {
		case m.focus == FocusSidebar && i == m.cursor:
			style = m.theme.SidebarCursor
		case s.ID == activeID:
			style = m.theme.SidebarActive
		case s.Archived:
			style = m.theme.SidebarArchived
		}
		lines = append(lines, style.Render(util.PadWidth(label, inner)))
	}

	return m.theme.Sidebar.
		Width(width - 1).
		Height(height).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

// =============================================================================
// MESSAGES
// =============================================================================

// renderMessages renders the active chat into the viewport content. While
// the store has the view hidden the area is blank.
func (m *Model) renderMessages() string {
	if !m.store.Visible() {
		return ""
	}
	msgs := m.store.Messages()
	if len(msgs) == 0 {
		return m.renderEmptyState()
	}

	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderMessage(msg model.Message) string {
	width := m.wrapWidth()

	if msg.Role == model.RoleUser {
		body := lipgloss.NewStyle().Width(width).Render(msg.Content)
		if atts := m.renderAttachments(msg.Attachments); atts != "" {
			if strings.TrimSpace(msg.Content) == "" {
				body = atts
			} else {
				body += "\n" + atts
			}
		}
		return m.theme.UserLabel.Render(msg.Role.DisplayName()) + "\n" + m.theme.UserBubble.Render(body)
	}

	label := m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	if msg.IsPlaceholder() {
		return label + "\n" + m.theme.Placeholder.Render(m.spinner.View()+" Composing...")
	}
	body := m.renderMarkdown(msg.Content, width)
	if atts := m.renderAttachments(msg.Attachments); atts != "" {
		body += "\n" + atts
	}
	return label + "\n" + m.theme.AssistantBubble.Render(body)
}

// renderMarkdown renders content with glamour, falling back to wrapped
// plain text.
func (m *Model) renderMarkdown(content string, width int) string {
	if m.markdown == nil {
		return lipgloss.NewStyle().Width(width).Render(content)
	}
	if out, ok := m.mdCache[content]; ok {
		return out
	}
	out, err := m.markdown.Render(content)
	if err != nil {
		m.logger.Debug("markdown render failed", "error", err)
		return lipgloss.NewStyle().Width(width).Render(content)
	}
	out = strings.Trim(out, "\n")
	if len(m.mdCache) > 256 {
		clear(m.mdCache)
	}
	m.mdCache[content] = out
	return out
}

func (m Model) renderAttachments(atts []model.Attachment) string {
	if len(atts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(atts))
	for _, a := range atts {
		line := "[" + a.Kind().String() + "] " + a.Name
		if a.IsPreview {
			lines = append(lines, m.theme.AttachmentPreview.Render(line+" (uploading)"))
		} else {
			lines = append(lines, m.theme.AttachmentStored.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEmptyState() string {
	text := "Start a conversation.\nType a message and press Enter, or /help for commands."
	return m.theme.EmptyState.
		Width(m.viewport.Width).
		PaddingTop(m.viewport.Height / 3).
		Render(text)
}

// =============================================================================
// INPUT
// =============================================================================

func (m Model) renderInput() string {
	style := m.theme.Input
	if m.focus == FocusInput {
		style = m.theme.InputFocused
	}
	box := style.Width(m.width - 2).Render(m.input.View())
	if len(m.pending) == 0 {
		return box
	}

	names := make([]string, 0, len(m.pending))
	for _, f := range m.pending {
		names = append(names, f.Name)
	}
	files := fmt.Sprintf("Attached (%d): %s", len(names), strings.Join(names, ", "))
	return m.theme.PendingFiles.Render(util.TruncateWidth(files, m.width)) + "\n" + box
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.ctrl.Loading():
		left = m.spinner.View() + " Waiting for reply (Esc to stop)"
	case m.store.LoadingChat():
		left = m.spinner.View() + " Loading chat"
	default:
		left = "Ready"
	}
	if m.store.Offline() {
		left += "  " + m.theme.Offline.Render("[!] Offline: cached chat list")
	}

	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, m.theme.ShortcutKey.Render(h.Key)+" "+h.Desc)
	}
	right := strings.Join(hints, "  ")

	inner := m.width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = max(inner-lipgloss.Width(left), 0)
	}
	return m.theme.StatusBar.
		Width(m.width).
		MaxWidth(m.width).
		Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelpOverlay() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Keys"))
	b.WriteString("\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString("  " + m.theme.ShortcutKey.Render(util.PadWidth(h.Key, 10)) + " " + h.Desc + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.theme.HeaderTitle.Render("Commands"))
	b.WriteString("\n\n")
	for _, c := range Commands {
		name := c.Name
		if c.Args != "" {
			name += " " + c.Args
		}
		b.WriteString("  " + m.theme.ShortcutKey.Render(util.PadWidth(name, 18)) + " " + c.Usage + "\n")
	}
	b.WriteString("\n" + m.theme.Dim.Render("F1 or Esc to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.SidebarTitle.GetForeground()).
			Padding(1, 2).
			Render(b.String()))
}
