// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// dashboard_cmd.go - Notifications, contents and projects.
//
// Commands:
//   notifications list          List notifications (--unread for unread only)
//   notifications read <id>     Mark one notification read
//   notifications read-all      Mark every notification read
//   notifications delete <id>   Delete a notification
//   contents list               List generated contents with filters
//   contents delete <id>...     Delete contents (--matching deletes the filtered list)
//   contents download <id>      Save a content file
//   projects list               List projects
//
// Examples:
//   genstudio contents list --type image --window 7days --sort name
//   genstudio contents list --min-temp 0.5 --max-temp 1.2
//   genstudio contents delete --matching --type video --window year --yes
//   genstudio contents download 17 -o poster.png

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/filter"
	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/notify"
	"github.com/jeranaias/genstudio-tui/internal/selection"
	"github.com/jeranaias/genstudio-tui/internal/util"
)

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func newNotificationsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "Read and manage notifications",
	}
	cmd.AddCommand(newNotificationsListCmd(opts))
	cmd.AddCommand(newNotificationsReadCmd(opts))
	cmd.AddCommand(newNotificationMutationCmd(opts, "read-all", "Mark every notification read", cobra.NoArgs,
		func(c *cobra.Command, center *notify.Center, _ []string) error {
			return center.MarkAllRead(c.Context())
		}))
	cmd.AddCommand(newNotificationMutationCmd(opts, "delete <id>", "Delete a notification", cobra.ExactArgs(1),
		func(c *cobra.Command, center *notify.Center, args []string) error {
			id, err := parseID("notification", args[0])
			if err != nil {
				return err
			}
			return center.Delete(c.Context(), id)
		}))
	return cmd
}

func newNotificationsListCmd(opts *rootOptions) *cobra.Command {
	var (
		lf     listFlags
		unread bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := lf.query()
			if err != nil {
				return err
			}
			if unread {
				equal(&q, "status", "unread")
			}

			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			center := notify.NewCenter(app.API, app.Logger)
			center.Fetch(cmd.Context())
			if err := center.Err(); err != nil {
				return err
			}
			items, err := applyList(filter.NewPipeline(filter.Notifications, nil), center.Items(), q, lf.limit)
			if err != nil {
				return err
			}

			return printResult(cmd, opts, items, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "No notifications.")
					return
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\t \tTITLE\tMESSAGE\tCREATED")
				for _, n := range items {
					mark := " "
					if !n.IsRead {
						mark = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, mark,
						util.TruncateWidth(util.SingleLine(n.Title), 32),
						util.TruncateWidth(util.SingleLine(n.Message), 48),
						formatTime(n.CreatedAt))
				}
				tw.Flush()
				fmt.Fprintf(w, "\n%d unread\n", center.UnreadCount())
			})
		},
	}
	lf.register(cmd, filter.Notifications.SortKeys())
	cmd.Flags().BoolVarP(&unread, "unread", "u", false, "list only unread notifications")
	return cmd
}

func newNotificationsReadCmd(opts *rootOptions) *cobra.Command {
	return newNotificationMutationCmd(opts, "read <id>", "Mark a notification read", cobra.ExactArgs(1),
		func(c *cobra.Command, center *notify.Center, args []string) error {
			id, err := parseID("notification", args[0])
			if err != nil {
				return err
			}
			return center.MarkRead(c.Context(), id)
		})
}

// newNotificationMutationCmd builds a notification command that changes
// server state through the center and reports the remaining unread count.
func newNotificationMutationCmd(opts *rootOptions, use, short string, args cobra.PositionalArgs,
	run func(c *cobra.Command, center *notify.Center, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			center := notify.NewCenter(app.API, app.Logger)
			center.Fetch(cmd.Context())
			if err := run(cmd, center, args); err != nil {
				return err
			}
			data := map[string]int{"unread": center.UnreadCount()}
			return printResult(cmd, opts, data, func(w io.Writer) {
				fmt.Fprintf(w, "%s %d unread\n", RenderConditional(SuccessStyle, "[OK]"), center.UnreadCount())
			})
		},
	}
}

// =============================================================================
// CONTENTS
// =============================================================================

// contentFlags select contents by category and numeric range.
type contentFlags struct {
	listFlags
	contentType string
	model       string
	style       string
	ratio       string
	project     string
	minTemp     float64
	maxTemp     float64
}

func (f *contentFlags) register(cmd *cobra.Command) {
	f.listFlags.register(cmd, filter.Contents.SortKeys())
	fl := cmd.Flags()
	fl.StringVar(&f.contentType, "type", "", "content type: text, image, video")
	fl.StringVar(&f.model, "model", "", "generating model")
	fl.StringVar(&f.style, "style", "", "image style")
	fl.StringVar(&f.ratio, "ratio", "", "aspect ratio, e.g. 16:9")
	fl.StringVar(&f.project, "project", "", "project id")
	fl.Float64Var(&f.minTemp, "min-temp", -1, "lowest temperature to keep")
	fl.Float64Var(&f.maxTemp, "max-temp", -1, "highest temperature to keep")
}

func (f *contentFlags) query(cmd *cobra.Command) (filter.Query, error) {
	q, err := f.listFlags.query()
	if err != nil {
		return q, err
	}
	equal(&q, "type", f.contentType)
	equal(&q, "model", f.model)
	equal(&q, "style", f.style)
	equal(&q, "ratio", f.ratio)
	equal(&q, "project", f.project)

	var r filter.Range
	if cmd.Flags().Changed("min-temp") {
		r.Min = &f.minTemp
	}
	if cmd.Flags().Changed("max-temp") {
		r.Max = &f.maxTemp
	}
	if r.Min != nil || r.Max != nil {
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return q, NewValidationError("temperature range", fmt.Sprintf("%g..%g", *r.Min, *r.Max), "min is above max")
		}
		q.Ranges = map[string]filter.Range{"temperature": r}
	}
	return q, nil
}

// filtered reports whether any selecting flag was given.
func (f *contentFlags) filtered(cmd *cobra.Command) bool {
	for _, name := range []string{"query", "window", "type", "model", "style", "ratio", "project", "min-temp", "max-temp"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func newContentsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contents",
		Aliases: []string{"library"},
		Short:   "Browse and manage generated contents",
	}
	cmd.AddCommand(newContentsListCmd(opts))
	cmd.AddCommand(newContentsDeleteCmd(opts))
	cmd.AddCommand(newContentsDownloadCmd(opts))
	return cmd
}

func newContentsListCmd(opts *rootOptions) *cobra.Command {
	var cf contentFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := cf.query(cmd)
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

			all, err := app.API.ListContents(cmd.Context())
			if err != nil {
				return err
			}
			items, err := applyList(filter.NewPipeline(filter.Contents, nil), all, q, cf.limit)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, items, func(w io.Writer) {
				printContents(w, items)
				if len(items) < len(all) {
					fmt.Fprintf(w, "\n%d of %d contents\n", len(items), len(all))
				}
			})
		},
	}
	cf.register(cmd)
	return cmd
}

func printContents(w io.Writer, items []model.Content) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No contents found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tMODEL\tTEMP\tCREATED")
	for _, c := range items {
		title := c.Title
		if title == "" {
			title = c.Prompt
		}
		temp := "-"
		if c.Temperature != 0 {
			temp = strconv.FormatFloat(c.Temperature, 'f', -1, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Type,
			util.TruncateWidth(util.SingleLine(title), 40), dash(c.Model), temp, formatTime(c.CreatedAt))
	}
	tw.Flush()
}

func newContentsDeleteCmd(opts *rootOptions) *cobra.Command {
	var (
		cf       contentFlags
		matching bool
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete contents by id, or every content matching the filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !matching {
				return NewValidationError("contents", "", "give ids or --matching with filters")
			}
			if matching && !cf.filtered(cmd) {
				return NewValidationError("filters", "", "--matching needs at least one filter flag")
			}

			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			picked := selection.New[model.ID]()
			if len(args) > 0 {
				ids, err := parseIDs("content", args)
				if err != nil {
					return err
				}
				for _, id := range ids {
					picked.Select(id)
				}
			}
			if matching {
				q, err := cf.query(cmd)
				if err != nil {
					return err
				}
				all, err := app.API.ListContents(cmd.Context())
				if err != nil {
					return err
				}
				items, err := applyList(filter.NewPipeline(filter.Contents, nil), all, q, cf.limit)
				if err != nil {
					return err
				}
				for _, c := range items {
					picked.Select(c.ID)
				}
			}
			if picked.Len() == 0 {
				return printResult(cmd, opts, map[string]int{"deleted": 0}, func(w io.Writer) {
					fmt.Fprintln(w, "Nothing to delete.")
				})
			}

			ok, err := RequireConfirmation(fmt.Sprintf("delete %d content(s)", picked.Len()), ConfirmationOptions{
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

			ids := picked.Items()
			if len(ids) == 1 {
				err = app.API.DeleteContent(cmd.Context(), ids[0])
			} else {
				err = app.API.BatchDeleteContents(cmd.Context(), ids)
			}
			if err != nil {
				return err
			}
			picked.SetMode(false)

			return printResult(cmd, opts, map[string]any{"deleted": len(ids), "ids": ids}, func(w io.Writer) {
				fmt.Fprintf(w, "%s Deleted %d content(s)\n", RenderConditional(SuccessStyle, "[OK]"), len(ids))
			})
		},
	}
	cf.register(cmd)
	cmd.Flags().BoolVar(&matching, "matching", false, "delete every content matching the filter flags")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func newContentsDownloadCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a content's file",
		Long:  "Saves the file of a generated content. The server's file name is used unless -o is given; -o - writes to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("content", args[0])
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

			body, name, err := app.API.DownloadContent(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer body.Close()

			if output == "-" {
				_, err := io.Copy(cmd.OutOrStdout(), body)
				return err
			}
			path := output
			if path == "" {
				path = name
			}
			n, err := writeFile(path, body)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, map[string]any{"path": path, "bytes": n}, func(w io.Writer) {
				fmt.Fprintf(w, "%s Saved %s (%d bytes)\n", RenderConditional(SuccessStyle, "[OK]"), path, n)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, or - for stdout")
	return cmd
}

// writeFile copies r into a new file at path, refusing to overwrite.
func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, NewValidationError("output", path, "file already exists")
		}
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return n, nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func newProjectsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Browse projects",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently touched first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := lf.query()
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

			all, err := app.API.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			items, err := applyList(filter.NewPipeline(filter.Projects, nil), all, q, lf.limit)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, items, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "No projects found.")
					return
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\tNAME\tCONTENTS\tUPDATED")
				for _, p := range items {
					updated := p.UpdatedAt
					if updated.IsZero() {
						updated = p.CreatedAt
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID,
						util.TruncateWidth(util.SingleLine(p.Name), 40), p.ContentCount, formatTime(updated))
				}
				tw.Flush()
			})
		},
	}
	lf.register(list, filter.Projects.SortKeys())
	cmd.AddCommand(list)
	return cmd
}
