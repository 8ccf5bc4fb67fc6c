// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package selection implements the multi-select working set used by list
// screens for bulk actions.
package selection

// Set is an insertion-ordered set of identifiers plus a selection-mode flag.
// Turning the mode off clears the set. The zero value is ready to use.
type Set[K comparable] struct {
	order  []K
	index  map[K]int
	active bool
}

// New creates an empty set with selection mode off.
func New[K comparable]() *Set[K] {
	return &Set[K]{}
}

// Active reports whether selection mode is on.
func (s *Set[K]) Active() bool {
	return s.active
}

// SetMode turns selection mode on or off. Off clears the set.
func (s *Set[K]) SetMode(on bool) {
	s.active = on
	if !on {
		s.Clear()
	}
}

// ToggleMode flips selection mode.
func (s *Set[K]) ToggleMode() {
	s.SetMode(!s.active)
}

// Select marks k. Selecting turns selection mode on.
func (s *Set[K]) Select(k K) {
	if s.index == nil {
		s.index = make(map[K]int)
	}
	s.active = true
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = len(s.order)
	s.order = append(s.order, k)
}

// Deselect unmarks k.
func (s *Set[K]) Deselect(k K) {
	i, ok := s.index[k]
	if !ok {
		return
	}
	delete(s.index, k)
	s.order = append(s.order[:i], s.order[i+1:]...)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
}

// Toggle flips k and reports whether it is now selected.
func (s *Set[K]) Toggle(k K) bool {
	if s.Contains(k) {
		s.Deselect(k)
		return false
	}
	s.Select(k)
	return true
}

// Contains reports whether k is selected.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.index[k]
	return ok
}

// SelectAll marks every key. When all keys are already selected it clears
// the set instead, matching a "select all" checkbox.
func (s *Set[K]) SelectAll(keys []K) {
	all := len(keys) > 0
	for _, k := range keys {
		if !s.Contains(k) {
			all = false
			break
		}
	}
	if all {
		s.Clear()
		return
	}
	for _, k := range keys {
		s.Select(k)
	}
}

// Clear unmarks everything without leaving selection mode.
func (s *Set[K]) Clear() {
	s.order = nil
	s.index = nil
}

// Items returns the selected keys in selection order.
func (s *Set[K]) Items() []K {
	return append([]K(nil), s.order...)
}

// Len returns the number of selected keys.
func (s *Set[K]) Len() int {
	return len(s.order)
}
