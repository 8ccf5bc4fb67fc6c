// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the genstudio TUI.

# Toasts (toast.go)

Every failed network call surfaces as a transient, non-blocking toast in
the bottom-right corner. Nothing in the chat screen is modal:

	toasts := components.NewToastManager(nil)
	toasts.AddError(err)
	view := components.RenderToastStack(toasts.Tick(), width, height)

ErrorText turns API errors into a short, user-facing sentence.
*/
package components
