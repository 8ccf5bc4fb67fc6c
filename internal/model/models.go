// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
)

// =============================================================================
// MODEL CONFIG TYPE
// =============================================================================

// ModelConfig describes a text generation model offered by the backend.
type ModelConfig struct {
	// ID is the model identifier sent in generate requests
	ID string `json:"id"`

	// Label is the human-readable display name
	Label string `json:"label"`

	// Provider identifies who serves the model
	Provider string `json:"provider"`

	// TemperatureLocked models only accept FixedTemperature
	TemperatureLocked bool    `json:"temperature_locked"`
	FixedTemperature  float64 `json:"fixed_temperature"`

	// Temperature is the user-selected sampling temperature
	Temperature float64 `json:"temperature"`

	// MaxTokens is the completion budget per request
	MaxTokens int `json:"max_tokens"`
}

// EffectiveTemperature returns the temperature to send for this model.
func (m ModelConfig) EffectiveTemperature() float64 {
	if m.TemperatureLocked {
		return m.FixedTemperature
	}
	return m.Temperature
}

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// DefaultModelID is used when neither flags nor config pick a model.
const DefaultModelID = "gpt-4o-mini"

// Models is the registry of text models the dashboard exposes.
var Models = map[string]ModelConfig{
	"gpt-4o-mini": {
		ID:          "gpt-4o-mini",
		Label:       "GPT-4o mini",
		Provider:    "OpenAI",
		Temperature: 0.7,
		MaxTokens:   2048,
	},
	"gpt-4o": {
		ID:          "gpt-4o",
		Label:       "GPT-4o",
		Provider:    "OpenAI",
		Temperature: 0.7,
		MaxTokens:   4096,
	},
	"o3-mini": {
		ID:                "o3-mini",
		Label:             "o3-mini",
		Provider:          "OpenAI",
		TemperatureLocked: true,
		FixedTemperature:  1,
		Temperature:       1,
		MaxTokens:         8192,
	},
	"gemini-2.0-flash": {
		ID:          "gemini-2.0-flash",
		Label:       "Gemini 2.0 Flash",
		Provider:    "Google",
		Temperature: 0.8,
		MaxTokens:   4096,
	},
	"claude-3-5-haiku": {
		ID:          "claude-3-5-haiku",
		Label:       "Claude 3.5 Haiku",
		Provider:    "Anthropic",
		Temperature: 0.7,
		MaxTokens:   4096,
	},
}

// LookupModel finds a model by ID or case-insensitive label.
func LookupModel(nameOrID string) (ModelConfig, bool) {
	if m, ok := Models[nameOrID]; ok {
		return m, true
	}
	for _, m := range Models {
		if strings.EqualFold(m.Label, nameOrID) || strings.EqualFold(m.ID, nameOrID) {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// ModelIDs returns the registered model IDs in sorted order.
func ModelIDs() []string {
	ids := make([]string, 0, len(Models))
	for id := range Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
