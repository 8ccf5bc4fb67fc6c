// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats_cmd.go - Chat history management.
//
// Commands:
//   chats list                List chats (archived ones with --archived or --all)
//   chats show <id>           Print a chat's messages
//   chats rename <id> <title> Rename a chat
//   chats archive <id>        Archive a chat
//   chats unarchive <id>      Restore an archived chat
//   chats delete <id>         Delete a chat
//   chats export <id>         Save a chat as Markdown, HTML or JSON
//
// Examples:
//   genstudio chats list -q invoice --sort name
//   genstudio chats rename 42 "Quarterly plan"
//   genstudio chats delete 42 --yes
//   genstudio chats export 42 --format html -o plan.html

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/api"
	"github.com/jeranaias/genstudio-tui/internal/chat"
	"github.com/jeranaias/genstudio-tui/internal/export"
	"github.com/jeranaias/genstudio-tui/internal/filter"
	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/util"
)

func newChatsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chats",
		Aliases: []string{"history"},
		Short:   "List and manage saved chats",
	}
	cmd.AddCommand(newChatsListCmd(opts))
	cmd.AddCommand(newChatsShowCmd(opts))
	cmd.AddCommand(newChatsRenameCmd(opts))
	cmd.AddCommand(newChatActionCmd(opts, chat.ActionArchive))
	cmd.AddCommand(newChatActionCmd(opts, chat.ActionUnarchive))
	cmd.AddCommand(newChatActionCmd(opts, chat.ActionDelete))
	cmd.AddCommand(newChatsExportCmd(opts))
	return cmd
}

// =============================================================================
// LIST
// =============================================================================

func newChatsListCmd(opts *rootOptions) *cobra.Command {
	var (
		lf       listFlags
		archived bool
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chats, newest first",
		Long:  "Lists chats. -q searches titles and message text on the server. When the server is unreachable the cached list is shown.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			app.openCache()

			// An unreachable server falls back to the cached list; a
			// rejected session does not.
			store := app.newStore(false)
			refreshErr := store.RefreshList(cmd.Context(), strings.TrimSpace(lf.text))
			if refreshErr != nil && (!store.Offline() || errors.Is(refreshErr, api.ErrUnauthorized)) {
				return refreshErr
			}

			q, err := lf.query()
			if err != nil {
				return err
			}
			q.Text = "" // already searched on the server
			switch {
			case all:
				equal(&q, "archived", "all")
			case archived:
				equal(&q, "archived", "true")
			default:
				equal(&q, "archived", "false")
			}
			sessions, err := applyList(filter.NewPipeline(filter.Chats, nil), store.Sessions(), q, lf.limit)
			if err != nil {
				return err
			}

			return printResult(cmd, opts, sessions, func(w io.Writer) {
				if store.Offline() {
					fmt.Fprintln(cmd.ErrOrStderr(), RenderConditional(WarningStyle, "[!] Offline: showing cached chat list"))
				}
				printChats(w, sessions)
			})
		},
	}
	lf.register(cmd, filter.Chats.SortKeys())
	cmd.Flags().BoolVar(&archived, "archived", false, "list only archived chats")
	cmd.Flags().BoolVar(&all, "all", false, "list archived and active chats")
	return cmd
}

func printChats(w io.Writer, sessions []model.ChatSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No chats found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED\tSTATUS")
	for _, s := range sessions {
		status := "active"
		if s.Archived {
			status = "archived"
		}
		updated := s.UpdatedAt
		if updated.IsZero() {
			updated = s.CreatedAt
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			s.ID, util.TruncateWidth(util.SingleLine(s.DisplayTitle()), 48), formatTime(updated), status)
	}
	tw.Flush()
}

// =============================================================================
// SHOW
// =============================================================================

func newChatsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a chat's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("chat", args[0])
			if err != nil {
				return err
			}
			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			detail, err := app.API.GetChat(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderer := newMarkdownRenderer(app.Config)
			return printResult(cmd, opts, detail, func(w io.Writer) {
				fmt.Fprintln(w, RenderConditional(TitleStyle, detail.DisplayTitle()))
				fmt.Fprintln(w, RenderSeparator())
				for _, msg := range detail.Messages {
					printMessage(w, renderer, msg)
				}
			})
		},
	}
}

// =============================================================================
// EXPORT
// =============================================================================

func newChatsExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format     string
		output     string
		theme      string
		noMetadata bool
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Save a chat as Markdown, HTML or JSON",
		Long:  "Saves a chat to a file named after its id and title, or to -o. -o - writes to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("chat", args[0])
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return &ValidationError{Field: "format", Value: format, Reason: err.Error(), Example: "markdown, html, json"}
			}
			exportOpts := export.DefaultOptions()
			exportOpts.IncludeMetadata = !noMetadata
			exportOpts.Theme = theme
			exp, err := export.New(f, exportOpts)
			if err != nil {
				return err
			}

			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			detail, err := app.API.GetChat(cmd.Context(), id)
			if err != nil {
				return err
			}
			data, err := exp.Export(detail)
			if err != nil {
				return fmt.Errorf("export chat %s: %w", id, err)
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			path := output
			if path == "" {
				path = export.FileName(detail.ChatSession, exp, time.Now())
			}
			n, err := writeFile(path, bytes.NewReader(data))
			if err != nil {
				return err
			}
			app.Logger.Info("chat exported", "chat", id, "format", f, "path", path)
			return printResult(cmd, opts, map[string]any{"path": path, "bytes": n, "format": f}, func(w io.Writer) {
				fmt.Fprintf(w, "%s Exported chat %s to %s\n", RenderConditional(SuccessStyle, "[OK]"), id, path)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "markdown, html or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, or - for stdout")
	cmd.Flags().StringVar(&theme, "theme", "dark", "HTML theme: dark or light")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "omit the header with dates and counts")
	return cmd
}

// =============================================================================
// RENAME / ARCHIVE / UNARCHIVE / DELETE
// =============================================================================

func newChatsRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatAction(cmd, opts, chat.ActionRename, args[0], strings.Join(args[1:], " "), false)
		},
	}
}

func newChatActionCmd(opts *rootOptions, action chat.Action) *cobra.Command {
	var yes bool
	short := map[chat.Action]string{
		chat.ActionArchive:   "Archive a chat",
		chat.ActionUnarchive: "Restore an archived chat",
		chat.ActionDelete:    "Delete a chat",
	}[action]

	cmd := &cobra.Command{
		Use:   string(action) + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatAction(cmd, opts, action, args[0], "", yes)
		},
	}
	if action == chat.ActionDelete {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	}
	return cmd
}

func runChatAction(cmd *cobra.Command, opts *rootOptions, action chat.Action, rawID, title string, yes bool) error {
	id, err := parseID("chat", rawID)
	if err != nil {
		return err
	}
	if action == chat.ActionRename && strings.TrimSpace(title) == "" {
		return NewValidationError("title", "", "must not be empty")
	}

	app, err := openApp(cmd, opts, logStderr)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.requireLogin(cmd.Context()); err != nil {
		return err
	}

	if action == chat.ActionDelete {
		ok, err := RequireConfirmation("delete chat "+id.String(), ConfirmationOptions{
			Yes:      yes,
			JSONMode: opts.jsonOut,
			In:       cmd.InOrStdin(),
			Out:      cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
	}

	// The store is built without the offline cache so a partial list is
	// never mirrored over it.
	store := app.newStore(false)
	ctx := cmd.Context()
	var done string
	switch action {
	case chat.ActionRename:
		err = store.Rename(ctx, id, title)
		done = "Renamed chat " + id.String() + " to " + strings.TrimSpace(title)
	case chat.ActionArchive:
		err = store.SetArchived(ctx, id, true)
		done = "Archived chat " + id.String()
	case chat.ActionUnarchive:
		err = store.SetArchived(ctx, id, false)
		done = "Restored chat " + id.String()
	case chat.ActionDelete:
		err = store.Delete(ctx, id)
		done = "Deleted chat " + id.String()
	default:
		err = fmt.Errorf("%w: %q", chat.ErrUnknownAction, action)
	}
	if err != nil {
		return err
	}

	data := map[string]string{"id": id.String(), "action": string(action)}
	if title != "" {
		data["title"] = strings.TrimSpace(title)
	}
	return printResult(cmd, opts, data, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s\n", RenderConditional(SuccessStyle, "[OK]"), done)
	})
}

// parseID validates an id argument.
func parseID(resource, s string) (model.ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError(resource+" id", s, "must not be empty")
	}
	if strings.ContainsAny(s, "/?# ") {
		return "", NewValidationError(resource+" id", s, "must not contain '/', '?', '#' or spaces")
	}
	return model.ID(s), nil
}

// parseIDs validates a list of id arguments, dropping duplicates.
func parseIDs(resource string, args []string) ([]model.ID, error) {
	seen := make(map[model.ID]bool, len(args))
	ids := make([]model.ID, 0, len(args))
	for _, a := range args {
		id, err := parseID(resource, a)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("no " + resource + " ids given")
	}
	return ids, nil
}
