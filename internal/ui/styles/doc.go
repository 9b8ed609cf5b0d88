// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the authfront TUI.
//
// All colors use Lip Gloss AdaptiveColor so the form reads on light and dark
// terminals. Status messages always carry an ASCII indicator next to the
// color.
//
// # Key Types
//
//   - Theme: Styled components for the form, buttons and status bar
//   - SpinnerConfig: Frames and speed for the pending indicator
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	theme.SetSize(width, height)
//	title := theme.Title.Render("Create an account")
package styles
