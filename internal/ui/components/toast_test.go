// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/genstudio-tui/internal/api"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestToastManager_AddAndExpire(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewToastManager(clock.now)

	errID := m.AddError(errors.New("boom"))
	okID := m.AddSuccess("saved")
	if errID == 0 || okID == 0 || errID == okID {
		t.Fatalf("unexpected ids %d, %d", errID, okID)
	}

	toasts := m.Toasts()
	if len(toasts) != 2 || toasts[0].ID != okID {
		t.Fatalf("newest toast should be first, got %+v", toasts)
	}

	clock.t = clock.t.Add(DefaultToastDuration)
	if got := m.Tick(); len(got) != 1 || got[0].ID != errID {
		t.Errorf("success toast should expire first, got %+v", got)
	}

	clock.t = clock.t.Add(ErrorToastDuration)
	if got := m.Tick(); len(got) != 0 {
		t.Errorf("error toast should expire, got %+v", got)
	}
}

func TestToastManager_Limits(t *testing.T) {
	m := NewToastManager(nil)
	for i := 0; i < MaxToasts+3; i++ {
		m.AddStatus(fmt.Sprintf("toast %d", i))
	}
	if m.Len() != MaxToasts {
		t.Errorf("Len() = %d, want %d", m.Len(), MaxToasts)
	}
	if m.Add(ToastKindStatus, "   ") != 0 {
		t.Error("blank toast should be dropped")
	}
}

func TestToastManager_Dismiss(t *testing.T) {
	m := NewToastManager(nil)
	a := m.AddStatus("a")
	m.AddStatus("b")

	m.Dismiss(a)
	if got := m.Toasts(); len(got) != 1 || got[0].Message != "b" {
		t.Errorf("after Dismiss: %+v", got)
	}
	m.DismissNewest()
	if m.Len() != 0 {
		t.Errorf("after DismissNewest: %d toasts", m.Len())
	}
}

func TestToastManager_CancellationIsSilent(t *testing.T) {
	m := NewToastManager(nil)
	if m.AddError(context.Canceled) != 0 || m.AddError(nil) != 0 {
		t.Error("cancellation and nil should not produce toasts")
	}
	if m.AddError(fmt.Errorf("send: %w", context.Canceled)) != 0 {
		t.Error("wrapped cancellation should not produce toasts")
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &api.Error{Status: 401}, "Session expired. Run genstudio login again."},
		{"forbidden", &api.Error{Status: 403}, "You do not have permission to do that."},
		{"server message", fmt.Errorf("send: %w", &api.Error{Status: 500, Body: `{"error":"model offline"}`}), "model offline"},
		{"not found", &api.Error{Status: 404}, "Not found."},
		{"bare status", &api.Error{Status: 502}, "Request failed with status 502."},
		{"plain", errors.New("dial tcp: refused"), "dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorText(tt.err); got != tt.want {
				t.Errorf("ErrorText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderToastStack(t *testing.T) {
	now := time.Now()
	toasts := []Toast{
		{ID: 1, Message: "first", Kind: ToastKindError, CreatedAt: now, Duration: ErrorToastDuration},
		{ID: 2, Message: "second", Kind: ToastKindSuccess, CreatedAt: now, Duration: DefaultToastDuration},
	}
	out := RenderToastStack(toasts, 100, 30, now)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("stack is missing toast text:\n%s", out)
	}
	if RenderToastStack(nil, 100, 30, now) != "" {
		t.Error("empty stack should render nothing")
	}
}

func TestWrapToastText(t *testing.T) {
	got := wrapToastText("one two three four five", 9)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 9 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if wrapToastText("short", 20) != "short" {
		t.Error("short text should be unchanged")
	}
}
