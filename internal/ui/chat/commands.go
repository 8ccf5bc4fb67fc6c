// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	chatcore "github.com/jeranaias/genstudio-tui/internal/chat"
	"github.com/jeranaias/genstudio-tui/internal/export"
	"github.com/jeranaias/genstudio-tui/internal/model"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command. args is the text after the
// command name, split on whitespace.
type CommandHandler func(m *Model, args []string) (tea.Model, tea.Cmd)

// CommandInfo describes a slash command for the help overlay.
type CommandInfo struct {
	Name  string
	Args  string
	Usage string
}

// commandHandlers maps command names and aliases to their handlers.
var commandHandlers = map[string]CommandHandler{
	"help":      handleHelpCommand,
	"?":         handleHelpCommand,
	"quit":      handleQuitCommand,
	"q":         handleQuitCommand,
	"new":       handleNewCommand,
	"n":         handleNewCommand,
	"attach":    handleAttachCommand,
	"a":         handleAttachCommand,
	"detach":    handleDetachCommand,
	"model":     handleModelCommand,
	"m":         handleModelCommand,
	"rename":    handleRenameCommand,
	"archive":   handleArchiveCommand,
	"unarchive": handleUnarchiveCommand,
	"delete":    handleDeleteCommand,
	"export":    handleExportCommand,
	"stop":      handleStopCommand,
	"refresh":   handleRefreshCommand,
}

// Commands lists the slash commands in help order.
var Commands = []CommandInfo{
	{"/new", "", "start a new chat"},
	{"/attach", "<path>", "attach a file to the next message"},
	{"/detach", "", "drop all pending attachments"},
	{"/model", "[id]", "show or switch the model"},
	{"/rename", "<title>", "rename this chat"},
	{"/archive", "", "archive this chat"},
	{"/unarchive", "", "restore this chat from the archive"},
	{"/delete", "", "delete this chat"},
	{"/export", "[md|html|json]", "save this chat to the current directory"},
	{"/stop", "", "stop waiting for the reply"},
	{"/refresh", "", "reload the chat list"},
	{"/help", "", "show keys and commands"},
	{"/quit", "", "leave genstudio"},
}

// parseCommand splits "/name arg arg" into its lowercased name and args.
func parseCommand(line string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// runCommand dispatches a slash command line.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	name, args := parseCommand(line)
	handler, ok := commandHandlers[name]
	if !ok {
		m.toasts.AddWarning(fmt.Sprintf("Unknown command /%s. Try /help.", name))
		return m, m.toastCmd()
	}
	return handler(&m, args)
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleHelpCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	m.showHelp = true
	return *m, nil
}

func handleQuitCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.quit()
}

func handleNewCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return *m, m.newChat()
}

func handleAttachCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.toasts.AddWarning("Usage: /attach <path>")
		return *m, m.toastCmd()
	}
	path := expandHome(strings.Join(args, " "))

	info, err := os.Stat(path)
	switch {
	case err != nil:
		m.toasts.AddError(fmt.Errorf("cannot attach %s: %w", filepath.Base(path), err))
		return *m, m.toastCmd()
	case info.IsDir():
		m.toasts.AddWarning(filepath.Base(path) + " is a directory.")
		return *m, m.toastCmd()
	}

	m.pending = append(m.pending, chatcore.File{Name: filepath.Base(path), Path: path})
	m.layout()
	m.toasts.AddStatus("Attached " + filepath.Base(path) + ".")
	return *m, m.toastCmd()
}

func handleDetachCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	if len(m.pending) == 0 {
		return *m, nil
	}
	m.pending = nil
	m.layout()
	m.toasts.AddStatus("Attachments cleared.")
	return *m, m.toastCmd()
}

func handleModelCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.toasts.AddStatus(fmt.Sprintf("Model: %s. Available: %s.",
			m.modelCfg.Label, strings.Join(model.ModelIDs(), ", ")))
		return *m, m.toastCmd()
	}

	mc, ok := model.LookupModel(strings.Join(args, " "))
	if !ok {
		m.toasts.AddError(fmt.Errorf("unknown model %q", strings.Join(args, " ")))
		return *m, m.toastCmd()
	}
	m.modelCfg = m.cfg.ApplyOverrides(mc)
	m.modelOverride = true
	m.logger.Info("model switched", "model", mc.ID)
	m.toasts.AddSuccess("Using " + mc.Label + ".")
	return *m, m.toastCmd()
}

func handleRenameCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		m.toasts.AddWarning("Usage: /rename <title>")
		return *m, m.toastCmd()
	}
	return m.activeAction(chatcore.ActionRename, title)
}

func handleArchiveCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.activeAction(chatcore.ActionArchive, "")
}

func handleUnarchiveCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.activeAction(chatcore.ActionUnarchive, "")
}

func handleDeleteCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.activeAction(chatcore.ActionDelete, "")
}

func handleExportCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	id := m.store.ActiveID()
	if id.IsZero() {
		m.toasts.AddWarning("This chat is not saved yet. Send a message first.")
		return *m, m.toastCmd()
	}
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		m.toasts.AddWarning("Usage: /export [md|html|json]")
		return *m, m.toastCmd()
	}
	exp, err := export.New(format, nil)
	if err != nil {
		m.toasts.AddError(err)
		return *m, m.toastCmd()
	}

	session := model.ChatSession{ID: id}
	for _, s := range m.store.Sessions() {
		if s.ID == id {
			session = s
			break
		}
	}
	data, err := exp.Export(&model.ChatDetail{ChatSession: session, Messages: m.store.Messages()})
	if err == nil {
		path := export.FileName(session, exp, time.Now())
		if err = os.WriteFile(path, data, 0644); err == nil {
			m.logger.Info("chat exported", "chat", id, "path", path)
			m.toasts.AddSuccess("Exported to " + path + ".")
			return *m, m.toastCmd()
		}
	}
	m.toasts.AddError(fmt.Errorf("export failed: %w", err))
	return *m, m.toastCmd()
}

func handleStopCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	if m.ctrl.Stop() {
		m.toasts.AddStatus("Stopped.")
		return *m, m.toastCmd()
	}
	return *m, nil
}

func handleRefreshCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return *m, m.refreshList(strings.TrimSpace(m.search.Value()))
}

// activeAction applies a list action to the chat on screen. A draft has
// nothing on the server to act on.
func (m *Model) activeAction(action chatcore.Action, title string) (tea.Model, tea.Cmd) {
	id := m.store.ActiveID()
	if id.IsZero() {
		m.toasts.AddWarning("This chat is not saved yet. Send a message first.")
		return *m, m.toastCmd()
	}
	return *m, m.chatAction(id, action, title)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
