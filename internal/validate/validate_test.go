// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"ana@example.com", true},
		{"  ana@example.com ", true},
		{"ana.b+tag@mail.example.co", true},
		{"", false},
		{"ana", false},
		{"ana@example", false},
		{"ana @example.com", false},
		{"@example.com", false},
	}
	for _, tt := range tests {
		got := Email(tt.input) == ""
		if got != tt.valid {
			t.Errorf("Email(%q) valid = %v, want %v", tt.input, got, tt.valid)
		}
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		input   string
		wantMsg string
	}{
		{"Secret123", ""},
		{"Senha1Ç3", ""},
		{"", "password is required"},
		{"short1A", "at least 8 characters"},
		{"alllower123", "an uppercase letter"},
		{"ALLUPPER123", "a lowercase letter"},
		{"NoDigitsHere", "a digit"},
	}
	for _, tt := range tests {
		got := Password(tt.input)
		if tt.wantMsg == "" && got != "" {
			t.Errorf("Password(%q) = %q, want valid", tt.input, got)
		}
		if tt.wantMsg != "" && !strings.Contains(got, tt.wantMsg) {
			t.Errorf("Password(%q) = %q, want it to mention %q", tt.input, got, tt.wantMsg)
		}
	}
}

func TestLogin(t *testing.T) {
	if err := Login("ana@example.com", "x"); err != nil {
		t.Errorf("Login valid form: %v", err)
	}

	err := Login("nope", "")
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("Login error type = %T", err)
	}
	if len(errs) != 2 || errs["email"] == "" || errs["password"] == "" {
		t.Errorf("errs = %v", errs)
	}
	if got := err.Error(); !strings.HasPrefix(got, "email: ") {
		t.Errorf("Error() = %q, want fields sorted", got)
	}
}

func TestRegister(t *testing.T) {
	if err := Register("Ana", "ana@example.com", "Secret123", "Secret123"); err != nil {
		t.Errorf("Register valid form: %v", err)
	}
	err := Register("", "ana@example.com", "Secret123", "Secret124")
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("Register error type = %T", err)
	}
	if errs["name"] == "" || errs["confirm"] == "" {
		t.Errorf("errs = %v", errs)
	}
}
