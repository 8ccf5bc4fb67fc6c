// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnknownField is returned when a query names a field the schema
	// does not declare.
	ErrUnknownField = errors.New("unknown filter field")

	// ErrUnknownSort is returned for an undeclared sort key.
	ErrUnknownSort = errors.New("unknown sort key")

	// ErrInvalidWindow is returned by ParseWindow.
	ErrInvalidWindow = errors.New("invalid date window")
)

// =============================================================================
// SCHEMA
// =============================================================================

// Comparator orders two items: negative when a sorts first.
type Comparator[T any] func(a, b T) int

// Schema declares how a Pipeline sees one entity type.
type Schema[T any] struct {
	// Name identifies the entity in error messages
	Name string

	// Text fields are searched by Query.Text
	Text []func(T) string

	// Categories are matched by Query.Equals
	Categories map[string]func(T) string

	// Numbers are matched by Query.Ranges
	Numbers map[string]func(T) float64

	// Time is the timestamp Query.Window applies to
	Time func(T) time.Time

	// Sorts are the named comparators; DefaultSort is used when the query
	// names none.
	Sorts       map[string]Comparator[T]
	DefaultSort string
}

// CategoryKeys returns the declared category names, sorted.
func (s Schema[T]) CategoryKeys() []string {
	return sortedKeys(s.Categories)
}

// NumberKeys returns the declared numeric field names, sorted.
func (s Schema[T]) NumberKeys() []string {
	return sortedKeys(s.Numbers)
}

// SortKeys returns the declared sort keys, sorted.
func (s Schema[T]) SortKeys() []string {
	return sortedKeys(s.Sorts)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// =============================================================================
// QUERY
// =============================================================================

// Query is one filter and sort configuration. The zero Query keeps every
// item and applies the schema's default sort.
type Query struct {
	// Text matches items whose searchable fields contain it, ignoring case
	// and accents.
	Text string

	// Equals maps category to required value. "" and "all" disable that
	// category.
	Equals map[string]string

	// Ranges maps numeric field to its bounds.
	Ranges map[string]Range

	// Window keeps items whose timestamp falls inside it.
	Window Window

	// Sort names the comparator.
	Sort string
}

// Range bounds a numeric field. A nil bound is open.
type Range struct {
	Min *float64
	Max *float64
}

// AtLeast is the range [min, +inf).
func AtLeast(min float64) Range { return Range{Min: &min} }

// AtMost is the range (-inf, max].
func AtMost(max float64) Range { return Range{Max: &max} }

// Between is the range [min, max].
func Between(min, max float64) Range { return Range{Min: &min, Max: &max} }

// Contains reports whether v is inside the range.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r Range) active() bool {
	return r.Min != nil || r.Max != nil
}

// Window is a relative date window.
type Window string

const (
	WindowAll    Window = "all"
	WindowToday  Window = "today"
	Window7Days  Window = "7days"
	Window30Days Window = "30days"
	WindowYear   Window = "year"
)

// Windows lists the accepted windows in display order.
var Windows = []Window{WindowAll, WindowToday, Window7Days, Window30Days, WindowYear}

// ParseWindow converts user input into a Window. The empty string is
// WindowAll.
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if w == "" {
		return WindowAll, nil
	}
	if slices.Contains(Windows, w) {
		return w, nil
	}
	return "", fmt.Errorf("%w: %q (want one of today, 7days, 30days, year, all)", ErrInvalidWindow, s)
}

// Since returns the earliest instant inside the window relative to now.
// The zero time means the window is unbounded.
func (w Window) Since(now time.Time) time.Time {
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case Window7Days:
		return now.AddDate(0, 0, -7)
	case Window30Days:
		return now.AddDate(0, 0, -30)
	case WindowYear:
		return now.AddDate(0, 0, -365)
	default:
		return time.Time{}
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline applies queries to lists of one entity type.
type Pipeline[T any] struct {
	schema Schema[T]
	now    func() time.Time
}

// NewPipeline creates a pipeline over schema. now supplies the reference
// instant for date windows; nil means time.Now.
func NewPipeline[T any](schema Schema[T], now func() time.Time) *Pipeline[T] {
	if now == nil {
		now = time.Now
	}
	return &Pipeline[T]{schema: schema, now: now}
}

// Schema returns the pipeline's schema.
func (p *Pipeline[T]) Schema() Schema[T] {
	return p.schema
}

// Validate checks that q only names declared fields and sort keys.
func (p *Pipeline[T]) Validate(q Query) error {
	for field := range q.Equals {
		if _, ok := p.schema.Categories[field]; !ok {
			return fmt.Errorf("%w: %s has no category %q", ErrUnknownField, p.schema.Name, field)
		}
	}
	for field := range q.Ranges {
		if _, ok := p.schema.Numbers[field]; !ok {
			return fmt.Errorf("%w: %s has no numeric field %q", ErrUnknownField, p.schema.Name, field)
		}
	}
	if q.Window != "" && !slices.Contains(Windows, q.Window) {
		return fmt.Errorf("%w: %q", ErrInvalidWindow, q.Window)
	}
	if q.Sort != "" {
		if _, ok := p.schema.Sorts[q.Sort]; !ok {
			return fmt.Errorf("%w: %s has no sort %q (have %s)",
				ErrUnknownSort, p.schema.Name, q.Sort, strings.Join(p.schema.SortKeys(), ", "))
		}
	}
	return nil
}

// Apply returns the items matching every active predicate of q, ordered
// by its comparator. The input slice is never modified and items with
// equal keys keep their input order.
func (p *Pipeline[T]) Apply(items []T, q Query) ([]T, error) {
	if err := p.Validate(q); err != nil {
		return nil, err
	}

	preds := p.predicates(q)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchAll(preds, item) {
			out = append(out, item)
		}
	}

	sortKey := q.Sort
	if sortKey == "" {
		sortKey = p.schema.DefaultSort
	}
	if cmp, ok := p.schema.Sorts[sortKey]; ok {
		slices.SortStableFunc(out, cmp)
	}
	return out, nil
}

// predicates builds one closure per active filter. None of them reads
// another's state.
func (p *Pipeline[T]) predicates(q Query) []func(T) bool {
	var preds []func(T) bool

	if needle := Fold(strings.TrimSpace(q.Text)); needle != "" && len(p.schema.Text) > 0 {
		fields := p.schema.Text
		preds = append(preds, func(item T) bool {
			for _, f := range fields {
				if strings.Contains(Fold(f(item)), needle) {
					return true
				}
			}
			return false
		})
	}

	for field, want := range q.Equals {
		if want == "" || strings.EqualFold(want, "all") {
			continue
		}
		get := p.schema.Categories[field]
		want := Fold(want)
		preds = append(preds, func(item T) bool {
			return Fold(get(item)) == want
		})
	}

	for field, r := range q.Ranges {
		if !r.active() {
			continue
		}
		get := p.schema.Numbers[field]
		preds = append(preds, func(item T) bool {
			return r.Contains(get(item))
		})
	}

	if since := q.Window.Since(p.now()); !since.IsZero() && p.schema.Time != nil {
		get := p.schema.Time
		preds = append(preds, func(item T) bool {
			t := get(item)
			return !t.IsZero() && !t.Before(since)
		})
	}

	return preds
}

func matchAll[T any](preds []func(T) bool, item T) bool {
	for _, pred := range preds {
		if !pred(item) {
			return false
		}
	}
	return true
}

// =============================================================================
// TEXT FOLDING
// =============================================================================

// Fold lowercases s and strips diacritics, so "Ação" folds to "acao".
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// CompareFolded orders strings by their folded form, then by the raw
// bytes so distinct strings never tie.
func CompareFolded(a, b string) int {
	if c := strings.Compare(Fold(a), Fold(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// CompareTime orders timestamps oldest first. Zero times sort first.
func CompareTime(a, b time.Time) int {
	return a.Compare(b)
}

// CompareFloat orders numbers ascending.
func CompareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Reverse flips a comparator.
func Reverse[T any](cmp Comparator[T]) Comparator[T] {
	return func(a, b T) int { return cmp(b, a) }
}
