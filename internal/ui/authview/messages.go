// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/authfront/internal/controller"
)

// StateChangedMsg signals that the controller published a new state. The
// model re-reads CurrentState, so signals may coalesce.
type StateChangedMsg struct{}

// DispatchedMsg reports the outcome of an intent dispatched off the UI loop.
type DispatchedMsg struct {
	Intent controller.Intent
	Err    error
}

// bridge turns controller notifications into tea messages.
type bridge struct {
	signal      chan struct{}
	unsubscribe func()
}

func newBridge(ctrl *controller.Controller) *bridge {
	b := &bridge{signal: make(chan struct{}, 1)}
	b.unsubscribe = ctrl.Subscribe(func(controller.AuthViewState) {
		select {
		case b.signal <- struct{}{}:
		default:
		}
	})
	return b
}

// wait blocks until the next notification.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return StateChangedMsg{}
	}
}

func (b *bridge) close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}
