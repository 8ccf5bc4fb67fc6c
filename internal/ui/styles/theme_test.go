// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	if got := theme.UserBubble.Render("hello"); !strings.Contains(got, "hello") {
		t.Errorf("UserBubble.Render lost its content: %q", got)
	}
	if got := theme.ToastError.Render("boom"); !strings.Contains(got, "boom") {
		t.Errorf("ToastError.Render lost its content: %q", got)
	}
}

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width   int
		want    LayoutMode
		sidebar int
	}{
		{40, LayoutNarrow, 0},
		{59, LayoutNarrow, 0},
		{60, LayoutMedium, 24},
		{99, LayoutMedium, 24},
		{100, LayoutWide, 32},
		{200, LayoutWide, 32},
	}

	theme := NewTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tt.width, got, tt.want)
		}
		if got := theme.SidebarWidth(); got != tt.sidebar {
			t.Errorf("SidebarWidth() at width %d = %d, want %d", tt.width, got, tt.sidebar)
		}
	}
}
