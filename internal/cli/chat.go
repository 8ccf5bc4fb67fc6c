// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat.
//
// Command: chat
//
// Opens the full-screen chat. --plain runs a line-based chat instead,
// for terminals where the full-screen view does not work.
//
// Plain mode commands:
//   /new                Start a new chat
//   /model <id>         Switch the model
//   /open <id>          Continue a saved chat
//   /quit, /exit        Leave
//
// Examples:
//   genstudio                  Full-screen chat (default)
//   genstudio chat --plain     Line-based chat with input history

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/blob"
	"github.com/jeranaias/genstudio-tui/internal/chat"
	"github.com/jeranaias/genstudio-tui/internal/config"
	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/notify"
	uichat "github.com/jeranaias/genstudio-tui/internal/ui/chat"
	"github.com/jeranaias/genstudio-tui/internal/ui/styles"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain {
				return runPlainChat(cmd, opts)
			}
			return runTUI(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line-based chat instead of the full-screen view")
	return cmd
}

// =============================================================================
// FULL-SCREEN CHAT
// =============================================================================

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if !IsTTY() || !IsStdoutTTY() {
		return &TTYRequiredError{Operation: "open the chat"}
	}

	app, err := openApp(cmd, opts, logFile)
	if err != nil {
		return err
	}
	defer app.Close()

	// Without a session the chat can still start from the offline cache
	if err := app.requireLogin(cmd.Context()); err != nil && !app.Config.Cache.Enabled {
		return err
	}
	app.openCache()

	store := app.newStore(true)
	ctrl := chat.NewController(store, app.API, blob.NewRegistry(), app.Logger)
	screen := uichat.New(uichat.Deps{
		Store:         store,
		Controller:    ctrl,
		Session:       app.Session,
		Notifications: notify.NewCenter(app.API, app.Logger),
		Config:        app.Config,
		ConfigPath:    app.ConfigPath,
		Theme:         styles.NewTheme(),
		Logger:        app.Logger,
	})
	defer screen.Close()

	app.Logger.Info("chat started", "server", app.API.BaseURL().String())
	p := tea.NewProgram(screen, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat failed: %w", err)
	}
	return nil
}

// =============================================================================
// PLAIN CHAT
// =============================================================================

// ChatCLI provides input history and line editing for the plain chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the saved input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := config.ResolvePath("", "chat_history")
	if err != nil {
		historyFile = ""
	}
	c := &ChatCLI{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			c.line.ReadHistory(f)
			f.Close()
		}
	}
	return c
}

// ReadInput reads one line, adding it to the history when non-empty.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (c *ChatCLI) Close() {
	if c.historyFile != "" {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// plainChat is the state of one plain chat run.
type plainChat struct {
	store    *chat.Store
	ctrl     *chat.Controller
	cfg      *config.Config
	model    model.ModelConfig
	renderer *glamour.TermRenderer
	out      io.Writer
	errOut   io.Writer
}

func runPlainChat(cmd *cobra.Command, opts *rootOptions) error {
	app, err := openApp(cmd, opts, logStderr)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.requireLogin(cmd.Context()); err != nil {
		return err
	}

	store := app.newStore(false)
	ctrl := chat.NewController(store, app.API, blob.NewRegistry(), app.Logger)
	defer ctrl.Close()

	pc := &plainChat{
		store:    store,
		ctrl:     ctrl,
		cfg:      app.Config,
		model:    app.Config.ModelConfig(),
		renderer: newMarkdownRenderer(app.Config),
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}

	input := NewChatCLI()
	defer input.Close()

	fmt.Fprintf(pc.out, "%s  %s\n", RenderConditional(TitleStyle, "GenStudio"),
		RenderConditional(DimStyle, pc.model.Label+" | /help for commands, Ctrl+D to quit"))

	for {
		line, err := input.ReadInput("you> ")
		if err != nil {
			// Ctrl+C, Ctrl+D and closed input all end the chat
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				app.Logger.Debug("input closed", "error", err)
			}
			fmt.Fprintln(pc.out)
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := pc.command(cmd.Context(), line); quit {
				return nil
			}
			continue
		}
		pc.send(cmd.Context(), line)
	}
}

// command runs a slash command and reports whether the chat should end.
func (pc *plainChat) command(ctx context.Context, line string) bool {
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(pc.out, "/new  /model <id>  /open <id>  /quit")
	case "new", "n":
		if err := pc.store.CreateNewChat(ctx); err != nil {
			pc.fail(err)
			return false
		}
		fmt.Fprintln(pc.out, RenderConditional(DimStyle, "New chat."))
	case "model", "m":
		if len(args) == 0 {
			fmt.Fprintf(pc.out, "Model: %s. Available: %s.\n", pc.model.Label, strings.Join(model.ModelIDs(), ", "))
			return false
		}
		mc, err := resolveModel(pc.cfg, args[0])
		if err != nil {
			pc.fail(err)
			return false
		}
		pc.model = mc
		fmt.Fprintln(pc.out, RenderConditional(DimStyle, "Using "+mc.Label+"."))
	case "open":
		if len(args) == 0 {
			pc.fail(errors.New("usage: /open <id>"))
			return false
		}
		id, err := parseID("chat", args[0])
		if err == nil {
			err = pc.store.LoadChat(ctx, id)
		}
		if err != nil {
			pc.fail(err)
			return false
		}
		for _, msg := range pc.store.Messages() {
			printMessage(pc.out, pc.renderer, msg)
		}
	default:
		pc.fail(fmt.Errorf("unknown command /%s", name))
	}
	return false
}

func (pc *plainChat) send(ctx context.Context, text string) {
	if err := pc.ctrl.Send(ctx, text, nil, pc.model); err != nil {
		pc.fail(err)
		return
	}
	if reply, ok := lastReply(pc.store.Messages()); ok {
		printMessage(pc.out, pc.renderer, reply)
	}
}

func (pc *plainChat) fail(err error) {
	fmt.Fprintf(pc.errOut, "%s %s\n", RenderConditional(ErrorStyle, "[ERROR]"), errorText(err))
}
