// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/authfront/internal/controller"
	"github.com/jeranaias/authfront/internal/i18n"
	"github.com/jeranaias/authfront/internal/util"
	"github.com/jeranaias/authfront/internal/validation"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	if m.state.Authenticated() {
		body = m.renderAuthenticated()
	} else {
		body = m.renderForm()
	}

	width := m.theme.FormWidth()
	card := m.theme.Card.Width(width)
	if m.rtl() {
		card = card.Align(lipgloss.Right)
	}

	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		card.Render(body),
		m.theme.StatusBar.Render(m.help.View(m.keyMap())),
	))
}

func (m Model) renderHeader(width int) string {
	title := m.t("appTitle")
	lang := i18n.Default().DisplayName(m.state.Language)
	gap := width - util.StringWidth(title) - util.StringWidth(lang) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Render(title + strings.Repeat(" ", gap) + lang)
}

// =============================================================================
// FORM
// =============================================================================

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.t(m.state.Mode.TitleKey())))
	b.WriteString("\n")

	labels := make([]string, 0, len(m.slots))
	for _, s := range m.slots {
		if s.kind == slotField {
			labels = append(labels, m.t(s.field))
		}
	}
	labelWidth := util.MaxWidth(labels...)

	for i, s := range m.slots {
		if s.kind != slotField {
			continue
		}
		b.WriteString(m.renderField(s.field, labelWidth, i == m.focus))
		b.WriteString("\n")
		if code, ok := m.state.FieldError(s.field); ok {
			msg := m.t(validation.MessageKey(s.field, code))
			b.WriteString(m.theme.FieldError.Render("  " + msg))
			b.WriteString("\n")
		}
	}

	if banner := m.renderBanner(); banner != "" {
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderButtons())
	return b.String()
}

func (m Model) renderField(field string, labelWidth int, focused bool) string {
	labelStyle := m.theme.Label
	if focused {
		labelStyle = m.theme.LabelFocused
	}
	label := m.t(field)
	input := m.inputs[field].View()

	if m.rtl() {
		return input + " " + labelStyle.Render(util.PadLeft(label, labelWidth))
	}
	return labelStyle.Render(util.PadRight(label, labelWidth)) + " " + input
}

func (m Model) renderBanner() string {
	switch {
	case m.state.LastError != nil:
		return m.theme.ErrorBanner.Render(m.message(m.state.LastError))
	case m.state.LastSuccess != nil:
		return m.theme.SuccessBanner.Render(m.message(m.state.LastSuccess))
	}
	return ""
}

func (m Model) message(msg *controller.Message) string {
	return msg.Text(m.state.Language, i18n.Translate)
}

func (m Model) renderButtons() string {
	var rows []string

	if m.state.Pending {
		rows = append(rows, m.theme.ButtonPending.Render(m.spinner.View()+" "+m.t("loading")))
	}

	for i, s := range m.slots {
		focused := i == m.focus && !m.state.Pending
		style := m.theme.Button
		if focused {
			style = m.theme.ButtonFocused
		}

		switch s.kind {
		case slotSubmit:
			if m.state.Pending {
				continue
			}
			label := m.t("submit")
			if m.state.Mode == controller.ModeReturningCustomer {
				label = m.t("login")
			}
			rows = append(rows, style.Render(label))
		case slotProvider:
			name := m.t(s.provider.String())
			rows = append(rows, style.Render(m.tp("loginWith", map[string]string{"provider": name})))
		case slotSwitch:
			text := m.t("switchToLogin")
			if m.state.Mode == controller.ModeReturningCustomer {
				text = m.t("switchToSetup")
			}
			if focused {
				rows = append(rows, m.theme.LabelFocused.Render("> "+text))
			} else {
				rows = append(rows, m.theme.Link.Render(text))
			}
		}
	}

	pos := lipgloss.Left
	if m.rtl() {
		pos = lipgloss.Right
	}
	return lipgloss.JoinVertical(pos, rows...)
}

// =============================================================================
// AUTHENTICATED
// =============================================================================

func (m Model) renderAuthenticated() string {
	id := m.state.Identity

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.t("welcome")))
	b.WriteString("\n")
	b.WriteString(m.theme.Badge.Render(m.t(id.Provider.String())))
	b.WriteString(" ")
	email := util.TruncateWidth(id.Email, m.theme.FormWidth()/2)
	b.WriteString(m.tp("loggedInAs", map[string]string{"email": email}))
	b.WriteString("\n")

	if m.expiry != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.WarningBanner.Render(m.tp("sessionExpiring", map[string]string{"remaining": m.expiry})))
		b.WriteString("\n")
	}
	if banner := m.renderBanner(); banner != "" {
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ButtonFocused.Render(m.t("logout")))
	return b.String()
}
