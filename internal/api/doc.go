// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the genstudio backend.
//
// Every request carries the session cookies held in the client's jar and,
// when the backend has issued one, the X-CSRF-TOKEN header copied from the
// csrf_access_token cookie. Requests are issued exactly once: there is no
// retry and no backoff, callers decide how to surface a failure.
//
// Non-2xx responses become *Error values carrying the response body text.
// Use errors.Is with ErrUnauthorized, ErrForbidden or ErrNotFound to classify
// them. Transport cancellation is returned unchanged so callers can test for
// context.Canceled.
package api
