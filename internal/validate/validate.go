// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validate implements the client-side form checks that run before
// any request is sent: required fields, email shape, and password strength.
package validate

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email returns a message when s is not an email address, or "".
func Email(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "email is required"
	}
	if !emailPattern.MatchString(s) {
		return "enter a valid email address"
	}
	return ""
}

// Password returns a message when s is too weak, or "".
func Password(s string) string {
	if s == "" {
		return "password is required"
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	var missing []string
	if len([]rune(s)) < MinPasswordLength {
		missing = append(missing, "at least 8 characters")
	}
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if len(missing) == 0 {
		return ""
	}
	return "password needs " + strings.Join(missing, ", ")
}

// Required returns a message when s is blank, or "".
func Required(field, s string) string {
	if strings.TrimSpace(s) == "" {
		return field + " is required"
	}
	return ""
}

// =============================================================================
// FORM ERRORS
// =============================================================================

// Errors maps a form field to the message shown next to it.
type Errors map[string]string

// Check records msg for field when msg is non-empty. The first message for
// a field wins.
func (e Errors) Check(field, msg string) {
	if msg == "" {
		return
	}
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns e as an error, or nil when there are no messages.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Error lists the messages sorted by field.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e[f])
	}
	return strings.Join(msgs, "; ")
}

// Login validates a login form.
func Login(email, password string) error {
	errs := Errors{}
	errs.Check("email", Email(email))
	errs.Check("password", Required("password", password))
	return errs.Err()
}

// Register validates a sign-up or password change form.
func Register(name, email, password, confirm string) error {
	errs := Errors{}
	errs.Check("name", Required("name", name))
	errs.Check("email", Email(email))
	errs.Check("password", Password(password))
	if password != confirm {
		errs.Check("confirm", "passwords do not match")
	}
	return errs.Err()
}
