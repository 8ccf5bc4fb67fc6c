// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/filter"
)

// listFlags are the search and sort flags shared by list commands.
type listFlags struct {
	text   string
	sort   string
	window string
	limit  int
}

func (f *listFlags) register(cmd *cobra.Command, sorts []string) {
	cmd.Flags().StringVarP(&f.text, "query", "q", "", "keep items containing this text")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort order: "+strings.Join(sorts, ", "))
	cmd.Flags().StringVar(&f.window, "window", "", "time window: today, 7days, 30days, year, all")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "show at most this many items (0 for all)")
}

// query converts the flags into a filter query.
func (f *listFlags) query() (filter.Query, error) {
	q := filter.Query{
		Text: f.text,
		Sort: f.sort,
	}
	if f.window != "" {
		w, err := filter.ParseWindow(f.window)
		if err != nil {
			return q, NewValidationError("window", f.window, err.Error())
		}
		q.Window = w
	}
	return q, nil
}

// applyList runs items through p with q and trims to the limit.
func applyList[T any](p *filter.Pipeline[T], items []T, q filter.Query, limit int) ([]T, error) {
	out, err := p.Apply(items, q)
	if err != nil {
		return nil, NewValidationError("filter", "", err.Error())
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// equal records a category filter when value is set.
func equal(q *filter.Query, category, value string) {
	if value == "" {
		return
	}
	if q.Equals == nil {
		q.Equals = make(map[string]string)
	}
	q.Equals[category] = value
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
