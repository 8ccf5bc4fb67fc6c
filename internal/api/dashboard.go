// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"io"
	"net/http"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// ListNotifications returns the user's notification feed.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	return getList[model.Notification](ctx, c, "/api/notifications/", "notifications")
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id model.ID) error {
	return c.DoJSON(ctx, http.MethodPatch, idPath("/api/notifications/", id, "/read"), nil, nil)
}

// MarkAllNotificationsRead marks the whole feed as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.DoJSON(ctx, http.MethodPatch, "/api/notifications/read-all", nil, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id model.ID) error {
	return c.DoJSON(ctx, http.MethodDelete, idPath("/api/notifications/", id, ""), nil, nil)
}

// =============================================================================
// CONTENTS AND PROJECTS
// =============================================================================

// ListContents returns every generated content of the user.
func (c *Client) ListContents(ctx context.Context) ([]model.Content, error) {
	return getList[model.Content](ctx, c, "/api/contents/", "contents")
}

// DeleteContent removes one content.
func (c *Client) DeleteContent(ctx context.Context, id model.ID) error {
	return c.DoJSON(ctx, http.MethodDelete, idPath("/api/contents/", id, ""), nil, nil)
}

// BatchDeleteContents removes several contents in one call.
func (c *Client) BatchDeleteContents(ctx context.Context, ids []model.ID) error {
	body := struct {
		IDs []model.ID `json:"ids"`
	}{IDs: ids}
	return c.DoJSON(ctx, http.MethodPost, "/api/contents/batch-delete", body, nil)
}

// DownloadContent streams the stored file of a content. The caller closes
// the reader.
func (c *Client) DownloadContent(ctx context.Context, id model.ID) (io.ReadCloser, string, error) {
	return c.Download(ctx, idPath("/api/contents/", id, "/file"), "content-"+id.String())
}

// ListProjects returns the user's projects.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	return getList[model.Project](ctx, c, "/api/projects/", "projects")
}

// =============================================================================
// ADMIN
// =============================================================================

// ListUsers returns every account. Requires an admin session.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	return getList[model.User](ctx, c, "/api/admin/users", "users")
}

// ListPlans returns the subscription plans.
func (c *Client) ListPlans(ctx context.Context) ([]model.Plan, error) {
	return getList[model.Plan](ctx, c, "/api/admin/plans", "plans")
}

// UpdateUserPlan moves a user to another plan.
func (c *Client) UpdateUserPlan(ctx context.Context, userID, planID model.ID) error {
	body := struct {
		PlanID model.ID `json:"plan_id"`
	}{PlanID: planID}
	return c.DoJSON(ctx, http.MethodPatch, idPath("/api/admin/users/", userID, "/plan"), body, nil)
}
