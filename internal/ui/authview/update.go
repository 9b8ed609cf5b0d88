// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/controller"
	"github.com/jeranaias/authfront/internal/session"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateChangedMsg:
		cmd := m.sync(m.ctrl.CurrentState())
		return m, tea.Batch(cmd, m.bridge.wait())

	case DispatchedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, controller.ErrBusy) {
			m.log.Debug("TUI_INTENT_REJECTED", zap.Error(msg.Err))
		}
		return m, nil

	case spinner.TickMsg:
		if m.state.Pending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case session.TickMsg:
		if m.watcher == nil {
			return m, nil
		}
		return m, m.watcher.HandleTick()

	case session.ExpiryWarningMsg:
		m.expiry = session.FormatDuration(msg.Remaining)
		return m, nil

	case session.ExpiredMsg:
		m.expiry = ""
		if !m.state.Authenticated() {
			return m, nil
		}
		return m, m.dispatch(controller.InvalidateSession{Reason: "token expired"})
	}

	return m.updateFocusedInput(msg)
}

// sync adopts a new controller state and adjusts the form around it.
func (m *Model) sync(s controller.AuthViewState) tea.Cmd {
	prev := m.state
	m.state = s

	var cmds []tea.Cmd
	if s.Language != prev.Language {
		m.keys = NewKeyMap(s.Language)
	}
	if s.Pending && !prev.Pending {
		cmds = append(cmds, m.spinner.Tick)
	}

	switch {
	case s.Authenticated() && !prev.Authenticated():
		clearSecrets(m.inputs)
		cmds = append(cmds, m.track())

	case !s.Authenticated() && prev.Authenticated():
		if m.watcher != nil {
			m.watcher.Stop()
		}
		m.expiry = ""
		m.slots = slotsFor(s.Mode)
		cmds = append(cmds, m.focusSlot(0))

	case s.Mode != prev.Mode:
		clearSecrets(m.inputs)
		m.slots = slotsFor(s.Mode)
		cmds = append(cmds, m.focusSlot(0))

	case s.LastSuccess != nil && prev.LastSuccess == nil:
		clearSecrets(m.inputs)
	}

	return tea.Batch(cmds...)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.help.Width = msg.Width

	w := m.theme.FormWidth() - 8
	if w < 10 {
		w = 10
	}
	for f, ti := range m.inputs {
		ti.Width = w
		m.inputs[f] = ti
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keyMap()

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.bridge.close()
		if m.watcher != nil {
			m.watcher.Stop()
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.Language):
		s, _ := m.ctrl.Dispatch(m.ctx, controller.ChangeLanguage{Code: m.nextLanguage()})
		cmd := m.sync(s)
		return m, cmd
	}

	if m.state.Authenticated() {
		if key.Matches(msg, keys.Logout) {
			return m, m.dispatch(controller.Logout{})
		}
		return m, nil
	}

	// The form is read-only while a submission is in flight.
	if m.state.Pending {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.SwitchMode):
		s, err := m.ctrl.Dispatch(m.ctx, controller.SwitchMode{})
		if err != nil {
			return m, nil
		}
		cmd := m.sync(s)
		return m, cmd

	case key.Matches(msg, keys.Next):
		cmd := m.focusSlot(m.focus + 1)
		return m, cmd

	case key.Matches(msg, keys.Prev):
		cmd := m.focusSlot(m.focus - 1)
		return m, cmd

	case key.Matches(msg, keys.Submit):
		return m.activate()
	}

	return m.updateFocusedInput(msg)
}

// activate handles Enter on the focused element.
func (m Model) activate() (tea.Model, tea.Cmd) {
	switch s := m.current(); s.kind {
	case slotProvider:
		return m, m.dispatch(controller.SubmitProviderLogin{Provider: s.provider})

	case slotSwitch:
		st, err := m.ctrl.Dispatch(m.ctx, controller.SwitchMode{})
		if err != nil {
			return m, nil
		}
		cmd := m.sync(st)
		return m, cmd

	default:
		if m.state.Mode == controller.ModeReturningCustomer {
			return m, m.dispatch(controller.SubmitLogin{Input: loginInput(m.inputs)})
		}
		return m, m.dispatch(controller.SubmitSetup{Input: setupInput(m.inputs)})
	}
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.current()
	if s.kind != slotField || m.state.Pending || m.state.Authenticated() {
		return m, nil
	}
	ti, ok := m.inputs[s.field]
	if !ok {
		return m, nil
	}
	var cmd tea.Cmd
	ti, cmd = ti.Update(msg)
	m.inputs[s.field] = ti
	return m, cmd
}
