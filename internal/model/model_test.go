// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ID TESTS
// =============================================================================

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ID
	}{
		{"number", `42`, "42"},
		{"string", `"c1"`, "c1"},
		{"null", `null`, ""},
		{"uuid", `"1f0e-aa"`, "1f0e-aa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			if id != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, id, tt.want)
			}
		})
	}
}

func TestID_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}{A: "7", B: "c1"})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if got := string(data); got != `{"a":7,"b":"c1","c":null}` {
		t.Errorf("Marshal = %s", got)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewPlaceholder(t *testing.T) {
	p := NewPlaceholder()
	if !p.IsPlaceholder() {
		t.Error("NewPlaceholder should be a placeholder")
	}
	if p.Role != RoleAssistant {
		t.Errorf("Role = %s, want assistant", p.Role)
	}
	if p.Content != "" {
		t.Errorf("Content = %q, want empty", p.Content)
	}
	if !strings.HasPrefix(p.ID, "msg_") {
		t.Errorf("ID should start with msg_, got %q", p.ID)
	}
}

func TestMessage_CloneDoesNotShareAttachments(t *testing.T) {
	orig := NewUserMessage("hi", []Attachment{{Name: "a.png", IsPreview: true}})
	clone := orig.Clone()
	clone.Attachments[0].IsPreview = false

	if !orig.Attachments[0].IsPreview {
		t.Error("Clone should not share the attachment slice")
	}
}

func TestMessage_Preview(t *testing.T) {
	m := NewMessage(RoleUser, "olá mundo\ncomo vai")
	if got := m.Preview(100); got != "olá mundo como vai" {
		t.Errorf("Preview = %q", got)
	}
	if got := m.Preview(6); got != "olá..." {
		t.Errorf("Preview(6) = %q", got)
	}
}

func TestAssignIDs(t *testing.T) {
	msgs := []Message{{Role: RoleUser}, {ID: "keep", Role: RoleAssistant}}
	AssignIDs(msgs)
	if msgs[0].ID == "" {
		t.Error("AssignIDs should fill empty IDs")
	}
	if msgs[1].ID != "keep" {
		t.Errorf("AssignIDs overwrote existing ID: %q", msgs[1].ID)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(msgs[0].ID, "msg_")); err != nil {
		t.Errorf("ID %q is not msg_ plus a UUID: %v", msgs[0].ID, err)
	}

	again := []Message{{Role: RoleUser}}
	AssignIDs(again)
	if again[0].ID == msgs[0].ID {
		t.Errorf("AssignIDs repeated ID %q", again[0].ID)
	}
}

func TestAttachment_Kind(t *testing.T) {
	tests := []struct {
		mime string
		want AttachmentKind
	}{
		{"image/png", KindImage},
		{"IMAGE/JPEG", KindImage},
		{"application/pdf", KindPDF},
		{"text/plain", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		if got := (Attachment{MimeType: tt.mime}).Kind(); got != tt.want {
			t.Errorf("Kind(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}

// =============================================================================
// SESSION AND MODEL TESTS
// =============================================================================

func TestChatSession_DisplayTitle(t *testing.T) {
	if got := (ChatSession{}).DisplayTitle(); got != DefaultChatTitle {
		t.Errorf("DisplayTitle = %q, want %q", got, DefaultChatTitle)
	}
	if (ChatSession{}).Saved() {
		t.Error("zero session should not be saved")
	}
	if !(ChatSession{ID: "c1"}).Saved() {
		t.Error("session with id should be saved")
	}
}

func TestModelConfig_EffectiveTemperature(t *testing.T) {
	locked, ok := LookupModel("o3-mini")
	if !ok {
		t.Fatal("o3-mini should be registered")
	}
	locked.Temperature = 0.2
	if got := locked.EffectiveTemperature(); got != 1 {
		t.Errorf("locked temperature = %v, want 1", got)
	}

	free := Models["gpt-4o"]
	free.Temperature = 0.3
	if got := free.EffectiveTemperature(); got != 0.3 {
		t.Errorf("free temperature = %v, want 0.3", got)
	}
}

func TestLookupModel_ByLabel(t *testing.T) {
	m, ok := LookupModel("gpt-4o MINI")
	if !ok || m.ID != "gpt-4o-mini" {
		t.Errorf("LookupModel by label = %+v, %v", m, ok)
	}
	if _, ok := LookupModel("nope"); ok {
		t.Error("unknown model should not resolve")
	}
}

func TestPlan_DecodesDecimalPrice(t *testing.T) {
	var p Plan
	if err := json.Unmarshal([]byte(`{"id":1,"name":"Pro","price":"19.90","credits":500}`), &p); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !p.Price.Equal(decimal.RequireFromString("19.90")) {
		t.Errorf("Price = %s", p.Price)
	}
}
