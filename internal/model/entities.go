// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT TYPES
// =============================================================================

// User is the authenticated account record returned by /api/users/me.
type User struct {
	ID        ID        `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	PlanID    ID        `json:"plan_id,omitempty"`
	PlanName  string    `json:"plan_name,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// DisplayName returns the name, or the email when no name is set.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Plan is a subscription plan managed from the admin panel.
type Plan struct {
	ID      ID              `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Credits int             `json:"credits"`
	Active  bool            `json:"is_active"`
}

// =============================================================================
// DASHBOARD ENTITIES
// =============================================================================

// Notification is an entry of the user's notification feed.
type Notification struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentType is the kind of generated artifact.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
)

// Content is a generated artifact stored by the content service.
type Content struct {
	ID          ID          `json:"id"`
	Type        ContentType `json:"content_type"`
	Title       string      `json:"title"`
	Prompt      string      `json:"prompt"`
	Model       string      `json:"model_used"`
	Style       string      `json:"style,omitempty"`
	Ratio       string      `json:"aspect_ratio,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	Duration    float64     `json:"duration,omitempty"`
	ProjectID   ID          `json:"project_id,omitempty"`
	URL         string      `json:"file_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Project groups generated contents.
type Project struct {
	ID           ID        `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ContentCount int       `json:"content_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}
