// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_ToggleAndOrder(t *testing.T) {
	s := New[string]()
	require.False(t, s.Active())

	require.True(t, s.Toggle("b"))
	require.True(t, s.Toggle("a"))
	require.True(t, s.Toggle("c"))
	require.True(t, s.Active())
	require.Equal(t, []string{"b", "a", "c"}, s.Items())

	require.False(t, s.Toggle("a"))
	require.Equal(t, []string{"b", "c"}, s.Items())
	require.True(t, s.Contains("c"))
	require.False(t, s.Contains("a"))
	require.Equal(t, 2, s.Len())
}

func TestSet_ModeOffClears(t *testing.T) {
	s := New[int]()
	s.SetMode(true)
	s.Select(1)
	s.Select(2)
	s.SetMode(false)

	require.Zero(t, s.Len())
	require.False(t, s.Contains(1))

	s.ToggleMode()
	require.True(t, s.Active())
	require.Zero(t, s.Len())
}

func TestSet_SelectAll(t *testing.T) {
	var s Set[int]
	s.Select(2)
	s.SelectAll([]int{1, 2, 3})
	require.Equal(t, []int{2, 1, 3}, s.Items())

	s.SelectAll([]int{1, 2, 3})
	require.Zero(t, s.Len())
	require.True(t, s.Active())
}

func TestSet_DeselectReindexes(t *testing.T) {
	s := New[string]()
	for _, k := range []string{"a", "b", "c", "d"} {
		s.Select(k)
	}
	s.Deselect("b")
	s.Deselect("c")
	s.Deselect("zzz")
	require.Equal(t, []string{"a", "d"}, s.Items())
	s.Deselect("d")
	require.Equal(t, []string{"a"}, s.Items())
}
