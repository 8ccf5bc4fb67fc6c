// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// getList fetches a list endpoint. The backend returns either a bare array
// or an object wrapping it under one of keys.
func getList[T any](ctx context.Context, c *Client, path string, keys ...string) ([]T, error) {
	var raw json.RawMessage
	if err := c.DoJSON(ctx, "GET", path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw, keys...)
}

func decodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode list envelope: %w", err)
	}
	for _, key := range slices.Concat(keys, []string{"items", "data", "results"}) {
		if inner, ok := envelope[key]; ok {
			return decodeList[T](inner)
		}
	}
	return nil, fmt.Errorf("list response has none of the fields %v", keys)
}

// decodeOne decodes an object that may be wrapped under key.
func decodeOne[T any](raw json.RawMessage, key string) (T, error) {
	var out T
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if inner := bytes.TrimSpace(envelope[key]); len(inner) > 0 && inner[0] == '{' {
			raw = inner
		}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return out, nil
}

func idPath(prefix string, id model.ID, suffix string) string {
	return prefix + url.PathEscape(id.String()) + suffix
}
