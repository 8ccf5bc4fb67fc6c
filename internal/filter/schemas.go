// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package filter

import (
	"strconv"
	"time"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// =============================================================================
// CONTENT
// =============================================================================

// Contents is the schema of the content library.
var Contents = Schema[model.Content]{
	Name: "content",
	Text: []func(model.Content) string{
		func(c model.Content) string { return c.Title },
		func(c model.Content) string { return c.Prompt },
	},
	Categories: map[string]func(model.Content) string{
		"type":    func(c model.Content) string { return string(c.Type) },
		"model":   func(c model.Content) string { return c.Model },
		"style":   func(c model.Content) string { return c.Style },
		"ratio":   func(c model.Content) string { return c.Ratio },
		"project": func(c model.Content) string { return c.ProjectID.String() },
	},
	Numbers: map[string]func(model.Content) float64{
		"temperature": func(c model.Content) float64 { return c.Temperature },
		"duration":    func(c model.Content) float64 { return c.Duration },
	},
	Time: func(c model.Content) time.Time { return c.CreatedAt },
	Sorts: map[string]Comparator[model.Content]{
		"recent": func(a, b model.Content) int { return CompareTime(b.CreatedAt, a.CreatedAt) },
		"oldest": func(a, b model.Content) int { return CompareTime(a.CreatedAt, b.CreatedAt) },
		"name":   func(a, b model.Content) int { return CompareFolded(a.Title, b.Title) },
		"model":  func(a, b model.Content) int { return CompareFolded(a.Model, b.Model) },
		"duration": func(a, b model.Content) int {
			return CompareFloat(a.Duration, b.Duration)
		},
	},
	DefaultSort: "recent",
}

// =============================================================================
// PROJECT
// =============================================================================

// Projects is the schema of the project list.
var Projects = Schema[model.Project]{
	Name: "project",
	Text: []func(model.Project) string{
		func(p model.Project) string { return p.Name },
		func(p model.Project) string { return p.Description },
	},
	Numbers: map[string]func(model.Project) float64{
		"contents": func(p model.Project) float64 { return float64(p.ContentCount) },
	},
	Time: func(p model.Project) time.Time { return p.CreatedAt },
	Sorts: map[string]Comparator[model.Project]{
		"recent": func(a, b model.Project) int { return CompareTime(lastTouched(b), lastTouched(a)) },
		"oldest": func(a, b model.Project) int { return CompareTime(a.CreatedAt, b.CreatedAt) },
		"name":   func(a, b model.Project) int { return CompareFolded(a.Name, b.Name) },
		"contents": func(a, b model.Project) int {
			return b.ContentCount - a.ContentCount
		},
	},
	DefaultSort: "recent",
}

func lastTouched(p model.Project) time.Time {
	if p.UpdatedAt.After(p.CreatedAt) {
		return p.UpdatedAt
	}
	return p.CreatedAt
}

// =============================================================================
// NOTIFICATION
// =============================================================================

// Notifications is the schema of the notification center.
var Notifications = Schema[model.Notification]{
	Name: "notification",
	Text: []func(model.Notification) string{
		func(n model.Notification) string { return n.Title },
		func(n model.Notification) string { return n.Message },
	},
	Categories: map[string]func(model.Notification) string{
		"status": func(n model.Notification) string {
			if n.IsRead {
				return "read"
			}
			return "unread"
		},
	},
	Time: func(n model.Notification) time.Time { return n.CreatedAt },
	Sorts: map[string]Comparator[model.Notification]{
		"recent": func(a, b model.Notification) int { return CompareTime(b.CreatedAt, a.CreatedAt) },
		"oldest": func(a, b model.Notification) int { return CompareTime(a.CreatedAt, b.CreatedAt) },
		"unread": func(a, b model.Notification) int {
			if a.IsRead != b.IsRead {
				if a.IsRead {
					return 1
				}
				return -1
			}
			return CompareTime(b.CreatedAt, a.CreatedAt)
		},
	},
	DefaultSort: "recent",
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// Chats is the schema of the chat sidebar.
var Chats = Schema[model.ChatSession]{
	Name: "chat",
	Text: []func(model.ChatSession) string{
		func(c model.ChatSession) string { return c.DisplayTitle() },
		func(c model.ChatSession) string { return c.Snippet },
	},
	Categories: map[string]func(model.ChatSession) string{
		"archived": func(c model.ChatSession) string { return strconv.FormatBool(c.Archived) },
	},
	Time: chatTouched,
	Sorts: map[string]Comparator[model.ChatSession]{
		"recent": func(a, b model.ChatSession) int { return CompareTime(chatTouched(b), chatTouched(a)) },
		"oldest": func(a, b model.ChatSession) int { return CompareTime(a.CreatedAt, b.CreatedAt) },
		"name":   func(a, b model.ChatSession) int { return CompareFolded(a.DisplayTitle(), b.DisplayTitle()) },
	},
	DefaultSort: "recent",
}

func chatTouched(c model.ChatSession) time.Time {
	if c.UpdatedAt.After(c.CreatedAt) {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// =============================================================================
// USER
// =============================================================================

// Users is the schema of the admin user table.
var Users = Schema[model.User]{
	Name: "user",
	Text: []func(model.User) string{
		func(u model.User) string { return u.Name },
		func(u model.User) string { return u.Email },
	},
	Categories: map[string]func(model.User) string{
		"role":   func(u model.User) string { return u.Role },
		"plan":   func(u model.User) string { return u.PlanName },
		"admin":  func(u model.User) string { return strconv.FormatBool(u.IsAdmin) },
		"active": func(u model.User) string { return strconv.FormatBool(u.Active) },
	},
	Time: func(u model.User) time.Time { return u.CreatedAt },
	Sorts: map[string]Comparator[model.User]{
		"name":   func(a, b model.User) int { return CompareFolded(a.DisplayName(), b.DisplayName()) },
		"email":  func(a, b model.User) int { return CompareFolded(a.Email, b.Email) },
		"recent": func(a, b model.User) int { return CompareTime(b.CreatedAt, a.CreatedAt) },
	},
	DefaultSort: "name",
}
