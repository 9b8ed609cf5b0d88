// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/authfront/internal/i18n"
)

// KeyMap defines the keyboard bindings of the form.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Submit     key.Binding
	SwitchMode key.Binding
	Language   key.Binding
	Logout     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// NewKeyMap returns the default bindings with help text in lang.
func NewKeyMap(lang string) KeyMap {
	tr := func(k string) string { return i18n.Translate(lang, k, nil) }
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab", tr("nextField")),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-Tab", tr("prevField")),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", tr("submit")),
		),
		SwitchMode: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", tr("switchMode")),
		),
		Language: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", tr("changeLanguage")),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", tr("logout")),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "?"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("Esc", tr("quit")),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.SwitchMode, k.Language, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Submit},
		{k.SwitchMode, k.Language, k.Logout},
		{k.Help, k.Quit},
	}
}

// authenticated narrows the bindings once a session is held.
func (k KeyMap) authenticated() KeyMap {
	k.Next.SetEnabled(false)
	k.Prev.SetEnabled(false)
	k.Submit.SetEnabled(false)
	k.SwitchMode.SetEnabled(false)
	k.Logout.SetEnabled(true)
	return k
}

func (k KeyMap) form() KeyMap {
	k.Logout.SetEnabled(false)
	return k
}
