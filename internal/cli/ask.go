// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot prompts.
//
// Command: ask [prompt...]
//
// Sends one message and prints the reply. The prompt is read from stdin
// when no argument is given or the argument is "-".
//
// Examples:
//   genstudio ask "Write a tagline for a bakery"
//   genstudio ask --chat 42 "Make it shorter"
//   genstudio ask --attach logo.png "Describe this image"
//   cat notes.md | genstudio ask --model o3-mini
//
// Flags:
//   -m, --model       Model id (default chat.default_model)
//   -c, --chat        Continue an existing chat
//   -a, --attach      Attach a file (repeatable)

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/blob"
	"github.com/jeranaias/genstudio-tui/internal/chat"
	"github.com/jeranaias/genstudio-tui/internal/config"
	"github.com/jeranaias/genstudio-tui/internal/model"
)

// askResult is the --json payload of ask.
type askResult struct {
	ChatID model.ID      `json:"chat_id,omitempty"`
	Model  string        `json:"model"`
	Reply  model.Message `json:"reply"`
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		modelID string
		chatID  string
		attach  []string
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send one message and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			return runAsk(cmd, opts, prompt, modelID, chatID, attach)
		},
	}
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "model id (default chat.default_model)")
	cmd.Flags().StringVarP(&chatID, "chat", "c", "", "continue the chat with this id")
	cmd.Flags().StringArrayVarP(&attach, "attach", "a", nil, "attach a file (repeatable)")
	return cmd
}

// readPrompt joins args, or reads stdin for "-" or no args.
func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if isTerminalReader(in) {
		return "", NewValidationError("prompt", "", "give a prompt or pipe one on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func runAsk(cmd *cobra.Command, opts *rootOptions, prompt, modelID, rawChatID string, attach []string) error {
	files, err := attachmentFiles(attach)
	if err != nil {
		return err
	}
	if strings.TrimSpace(prompt) == "" && len(files) == 0 {
		return NewValidationError("prompt", "", "must not be empty")
	}

	app, err := openApp(cmd, opts, logStderr)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.requireLogin(cmd.Context()); err != nil {
		return err
	}

	mc, err := resolveModel(app.Config, modelID)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store := app.newStore(false)
	if rawChatID != "" {
		id, err := parseID("chat", rawChatID)
		if err != nil {
			return err
		}
		if err := store.LoadChat(ctx, id); err != nil {
			return err
		}
	}

	ctrl := chat.NewController(store, app.API, blob.NewRegistry(), app.Logger)
	defer ctrl.Close()
	if err := ctrl.Send(ctx, prompt, files, mc); err != nil {
		return err
	}

	reply, ok := lastReply(store.Messages())
	if !ok {
		return errors.New("the server returned no reply")
	}
	result := askResult{ChatID: store.ActiveID(), Model: mc.ID, Reply: reply}
	renderer := newMarkdownRenderer(app.Config)
	return printResult(cmd, opts, result, func(w io.Writer) {
		fmt.Fprint(w, renderContent(renderer, reply.Content))
		if !strings.HasSuffix(reply.Content, "\n") {
			fmt.Fprintln(w)
		}
		if !result.ChatID.IsZero() && rawChatID == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), RenderConditional(DimStyle, "chat "+result.ChatID.String()))
		}
	})
}

// resolveModel returns the model named by id, or the configured default,
// with the configured overrides applied.
func resolveModel(cfg *config.Config, id string) (model.ModelConfig, error) {
	if id == "" {
		return cfg.ModelConfig(), nil
	}
	mc, ok := model.LookupModel(id)
	if !ok {
		return model.ModelConfig{}, &ValidationError{
			Field:   "model",
			Value:   id,
			Reason:  "unknown model",
			Example: strings.Join(model.ModelIDs(), ", "),
		}
	}
	return cfg.ApplyOverrides(mc), nil
}

// attachmentFiles checks that every path is a readable regular file.
func attachmentFiles(paths []string) ([]chat.File, error) {
	files := make([]chat.File, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, NewValidationError("attachment", p, "file not found")
		}
		if info.IsDir() {
			return nil, NewValidationError("attachment", p, "is a directory")
		}
		files = append(files, chat.File{Name: filepath.Base(p), Path: p})
	}
	return files, nil
}

func lastReply(msgs []model.Message) (model.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant && !msgs[i].IsPlaceholder() {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// newMarkdownRenderer returns a glamour renderer, or nil when markdown is
// disabled or stdout is not a terminal.
func newMarkdownRenderer(cfg *config.Config) *glamour.TermRenderer {
	if !cfg.UI.Markdown || !IsStdoutTTY() {
		return nil
	}
	wrap := cfg.UI.WordWrap
	if wrap <= 0 {
		wrap = GetTerminalWidth() - 2
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

// renderContent renders markdown, falling back to the raw text.
func renderContent(r *glamour.TermRenderer, content string) string {
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

// printMessage prints one chat turn with its role label and attachments.
func printMessage(w io.Writer, r *glamour.TermRenderer, msg model.Message) {
	label := RenderConditional(AssistantStyle, msg.Role.DisplayName())
	if msg.Role == model.RoleUser {
		label = RenderConditional(UserStyle, msg.Role.DisplayName())
	}
	fmt.Fprintln(w, label)

	content := msg.Content
	if msg.Role == model.RoleAssistant {
		content = renderContent(r, content)
	}
	if content = strings.TrimRight(content, "\n"); content != "" {
		fmt.Fprintln(w, content)
	}
	for _, a := range msg.Attachments {
		fmt.Fprintln(w, RenderConditional(DimStyle, "["+a.Kind().String()+"] "+a.Name))
	}
	fmt.Fprintln(w)
}
