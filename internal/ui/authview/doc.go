// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package authview is the full-screen terminal view of the authentication
// form, built on bubbletea.
//
// The view owns no authentication state. It renders the controller's
// AuthViewState, turns key presses into intents, and re-renders when the
// controller publishes. Submissions run in commands so the UI keeps
// animating while the backend call is pending.
//
// # Usage
//
//	m := authview.New(authview.Options{Controller: ctrl, Theme: theme})
//	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
package authview
