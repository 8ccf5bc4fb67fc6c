// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error variables for common backend failures.
var (
	// ErrUnauthorized indicates the session cookie is missing or expired (401).
	ErrUnauthorized = errors.New("not authenticated")

	// ErrForbidden indicates the user lacks permission (403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the resource does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrNoBaseURL indicates the client was built without a backend URL.
	ErrNoBaseURL = errors.New("backend base URL not configured")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Method string
	Path   string
	Status int
	// Body is the raw response body text.
	Body string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, msg)
}

// Is maps status codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message extracts a human-readable message from the body. JSON bodies of
// the form {"error": ...}, {"message": ...}, {"msg": ...} or {"detail": ...}
// yield the field; anything else is returned trimmed.
func (e *Error) Message() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		for _, key := range []string{"error", "message", "msg", "detail"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return body
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
