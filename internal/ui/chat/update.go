// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	chatcore "github.com/jeranaias/genstudio-tui/internal/chat"
	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case storeChangedMsg:
		m.clampCursor()
		m.refreshViewport()
		return m, m.rt.wait()

	case sendDoneMsg:
		return m.handleSendDone(msg)

	case listRefreshedMsg:
		if msg.err != nil {
			if m.store.Offline() {
				m.toasts.AddWarning("Offline: showing the cached chat list.")
			} else {
				m.toasts.AddError(msg.err)
			}
		}
		return m, tea.Batch(m.rt.wait(), m.toastCmd())

	case chatLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, chatcore.ErrStaleLoad) {
			m.toasts.AddError(msg.err)
		}
		m.followTail = true
		m.refreshViewport()
		return m, m.toastCmd()

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case notificationsFetchedMsg:
		if err := m.notes.Err(); err != nil {
			m.logger.Debug("notifications unavailable", "error", err)
		}
		return m, nil

	case configReloadedMsg:
		return m.handleConfigReload(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd

	case components.ToastTickMsg:
		if len(m.toasts.Tick()) == 0 {
			m.toastTicking = false
			return m, nil
		}
		return m, components.ToastTickCmd()
	}

	return m.updateInputs(msg)
}

// busy reports whether a reply or a chat load is pending.
func (m Model) busy() bool {
	return m.ctrl.Loading() || m.store.LoadingChat()
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	widthChanged := msg.Width != m.width
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	if widthChanged {
		m.markdown = m.newRenderer(m.wrapWidth())
		clear(m.mdCache)
	}
	m.layout()
	m.refreshViewport()
	return m, nil
}

// layout sizes the viewport and inputs to the current window.
func (m *Model) layout() {
	sidebar := m.theme.SidebarWidth()
	mainWidth := m.width - sidebar
	if mainWidth < 10 {
		mainWidth = 10
	}

	// Header and status bar are one line each; the bordered input is three
	inputHeight := 3
	if len(m.pending) > 0 {
		inputHeight++
	}
	bodyHeight := m.height - 2 - inputHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	m.viewport.Width = mainWidth
	m.viewport.Height = bodyHeight
	m.input.Width = m.width - 6
	if sidebar > 4 {
		m.search.Width = sidebar - 4
	}
}

// wrapWidth is the text width inside a message bubble.
func (m Model) wrapWidth() int {
	w := m.width - m.theme.SidebarWidth() - 10
	if limit := m.cfg.UI.WordWrap; limit > 0 && w > limit {
		w = limit
	}
	if w < 20 {
		w = 20
	}
	return w
}

// refreshViewport re-renders the messages and keeps the view pinned to the
// bottom when it was there.
func (m *Model) refreshViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom || m.followTail {
		m.viewport.GotoBottom()
		m.followTail = false
	}
}

func (m *Model) clampCursor() {
	n := len(m.SidebarItems())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case m.focus == FocusSearch && msg.Type == tea.KeyEsc:
		m.setFocus(FocusInput)
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if m.ctrl.Stop() {
			m.toasts.AddStatus("Stopped.")
			return m, m.toastCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.DismissToast):
		m.toasts.DismissNewest()
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		return m, m.newChat()

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == FocusInput && m.theme.SidebarWidth() > 0 {
			m.setFocus(FocusSidebar)
		} else {
			m.setFocus(FocusInput)
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		if m.theme.SidebarWidth() > 0 {
			m.setFocus(FocusSearch)
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.ShowArchived):
		m.showArchived = !m.showArchived
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	switch m.focus {
	case FocusSidebar:
		return m.handleSidebarKey(msg)
	case FocusSearch:
		return m.handleSearchKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.SidebarItems()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if len(items) > 0 {
			cmd := m.openChat(items[m.cursor].ID)
			m.setFocus(FocusInput)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Archive):
		if len(items) > 0 {
			s := items[m.cursor]
			action := chatcore.ActionArchive
			if s.Archived {
				action = chatcore.ActionUnarchive
			}
			return m, m.chatAction(s.ID, action, "")
		}
	case key.Matches(msg, m.keys.Delete):
		if len(items) > 0 {
			return m, m.chatAction(items[m.cursor].ID, chatcore.ActionDelete, "")
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.rt.search.Cancel()
		m.setFocus(FocusSidebar)
		return m, m.refreshList(strings.TrimSpace(m.search.Value()))
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.rt.search.Trigger(strings.TrimSpace(after))
	}
	return m, cmd
}

// updateInputs forwards anything else (cursor blink) to the focused input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == FocusSearch {
		m.search, cmd = m.search.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	m.input.Blur()
	m.search.Blur()
	switch f {
	case FocusInput:
		m.input.Focus()
	case FocusSearch:
		m.search.Focus()
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

// =============================================================================
// SEND
// =============================================================================

// submit runs a slash command or sends the input with the pending files.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		return m.runCommand(text)
	}
	if text == "" && len(m.pending) == 0 {
		return m, nil
	}
	if m.ctrl.Loading() {
		m.toasts.AddWarning("Wait for the reply, or press Esc to stop it.")
		return m, m.toastCmd()
	}

	files := m.pending
	m.pending = nil
	m.input.Reset()
	m.followTail = true
	m.layout()

	ctrl, ctx, cfg := m.ctrl, m.rt.ctx, m.modelCfg
	send := func() tea.Msg {
		return sendDoneMsg{err: ctrl.Send(ctx, text, files, cfg)}
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

func (m Model) handleSendDone(msg sendDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil:
	case errors.Is(msg.err, chatcore.ErrSendInFlight):
		m.toasts.AddWarning("A reply is still pending.")
	case errors.Is(msg.err, chatcore.ErrEmptyMessage):
	default:
		m.toasts.AddError(msg.err)
	}
	m.followTail = true
	m.refreshViewport()
	return m, m.toastCmd()
}

// =============================================================================
// CHAT SWITCHING
// =============================================================================

// openChat stops any pending reply and loads chat id.
func (m Model) openChat(id model.ID) tea.Cmd {
	if id == m.store.ActiveID() {
		return nil
	}
	m.ctrl.Stop()
	store, ctx := m.store, m.rt.ctx
	return tea.Batch(func() tea.Msg {
		return chatLoadedMsg{err: store.LoadChat(ctx, id)}
	}, m.spinner.Tick)
}

// newChat stops any pending reply and switches to a fresh draft.
func (m Model) newChat() tea.Cmd {
	m.ctrl.Stop()
	store, ctx := m.store, m.rt.ctx
	return func() tea.Msg {
		return chatLoadedMsg{err: store.CreateNewChat(ctx)}
	}
}

// chatAction runs a list action against chat id on the server.
func (m Model) chatAction(id model.ID, action chatcore.Action, title string) tea.Cmd {
	if action == chatcore.ActionDelete && id == m.store.ActiveID() {
		m.ctrl.Stop()
	}
	store, ctx := m.store, m.rt.ctx
	return func() tea.Msg {
		var err error
		switch action {
		case chatcore.ActionRename:
			err = store.Rename(ctx, id, title)
		case chatcore.ActionArchive:
			err = store.SetArchived(ctx, id, true)
		case chatcore.ActionUnarchive:
			err = store.SetArchived(ctx, id, false)
		case chatcore.ActionDelete:
			err = store.Delete(ctx, id)
		default:
			err = chatcore.ErrUnknownAction
		}
		return actionDoneMsg{action: action, title: title, err: err}
	}
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.toasts.AddError(msg.err)
		return m, m.toastCmd()
	}
	switch msg.action {
	case chatcore.ActionRename:
		m.toasts.AddSuccess("Renamed to " + msg.title + ".")
	case chatcore.ActionArchive:
		m.toasts.AddSuccess("Chat archived.")
	case chatcore.ActionUnarchive:
		m.toasts.AddSuccess("Chat restored.")
	case chatcore.ActionDelete:
		m.toasts.AddSuccess("Chat deleted.")
	}
	m.clampCursor()
	m.refreshViewport()
	return m, m.toastCmd()
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (m Model) handleConfigReload(msg configReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("config reload failed", "error", msg.err)
		m.toasts.AddWarning("Config not reloaded: " + msg.err.Error())
		return m, tea.Batch(m.rt.wait(), m.toastCmd())
	}
	if msg.cfg == nil {
		return m, m.rt.wait()
	}

	m.cfg = msg.cfg
	if m.modelOverride {
		m.modelCfg = m.cfg.ApplyOverrides(m.modelCfg)
	} else {
		m.modelCfg = m.cfg.ModelConfig()
	}
	m.showArchived = m.cfg.UI.ShowArchived
	m.markdown = m.newRenderer(m.wrapWidth())
	clear(m.mdCache)
	m.clampCursor()
	m.refreshViewport()

	m.logger.Info("config reloaded", "model", m.modelCfg.ID)
	m.toasts.AddStatus("Config reloaded.")
	return m, tea.Batch(m.rt.wait(), m.toastCmd())
}
