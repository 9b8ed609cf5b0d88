// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the authentication form.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// FRAME
	// ==========================================================================

	App      lipgloss.Style
	Header   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Card     lipgloss.Style

	// ==========================================================================
	// FORM FIELDS
	// ==========================================================================

	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Placeholder  lipgloss.Style
	Cursor       lipgloss.Style
	FieldError   lipgloss.Style

	// ==========================================================================
	// BUTTONS
	// ==========================================================================

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPending lipgloss.Style
	Link          lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	ErrorBanner   lipgloss.Style
	SuccessBanner lipgloss.Style
	WarningBanner lipgloss.Style
	Spinner       lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Badge        lipgloss.Style
}

// NewTheme creates a theme. name may be "dark", "light" or empty to detect
// the terminal background.
func NewTheme(name string) *Theme {
	colorProfile := termenv.ColorProfile()

	isDark := termenv.HasDarkBackground()
	switch strings.ToLower(name) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(1, 2)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 2)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)

	// Fields
	t.Label = lipgloss.NewStyle().Foreground(TextSecondary)
	t.LabelFocused = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.Input = lipgloss.NewStyle().Foreground(TextPrimary)
	t.InputFocused = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.Placeholder = lipgloss.NewStyle().Foreground(TextMuted)
	t.Cursor = lipgloss.NewStyle().Foreground(Purple)
	t.FieldError = lipgloss.NewStyle().Foreground(Rose)

	// Buttons
	t.Button = lipgloss.NewStyle().
		Foreground(Cyan).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2)

	t.ButtonFocused = t.Button.
		Foreground(TextInverse).
		Background(Purple).
		BorderForeground(Purple).
		Bold(true)

	t.ButtonPending = t.Button.
		Foreground(Amber).
		BorderForeground(Amber)

	t.Link = lipgloss.NewStyle().Foreground(Cyan).Underline(true)

	// Messages
	t.ErrorBanner = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Rose).
		PaddingLeft(1)

	t.SuccessBanner = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Emerald).
		PaddingLeft(1)

	t.WarningBanner = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		PaddingLeft(2)

	t.Spinner = lipgloss.NewStyle().Foreground(Amber)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.Badge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Emerald).
		Bold(true).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// FormWidth returns the width of the form card for the current terminal.
func (t *Theme) FormWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		if t.Width <= 4 {
			return 40
		}
		return t.Width - 4
	case LayoutMedium:
		return 56
	default:
		return 64
	}
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
