// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/backend"
	"github.com/jeranaias/authfront/internal/controller"
	"github.com/jeranaias/authfront/internal/i18n"
	"github.com/jeranaias/authfront/internal/session"
	"github.com/jeranaias/authfront/internal/ui/styles"
	"github.com/jeranaias/authfront/internal/util"
)

func newTestModel(t *testing.T, store *session.MemoryStore) (Model, *controller.Controller) {
	t.Helper()
	if store == nil {
		store = session.NewMemoryStore(nil)
	}
	ctrl := controller.New(controller.Options{
		Backend: backend.NewMock(backend.Delays{}, nil),
		Store:   store,
	})
	m := New(Options{
		Controller: ctrl,
		Theme:      styles.NewTheme("dark"),
		Watcher:    session.NewWatcher(session.DefaultWatcherConfig()),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), ctrl
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// runDispatch executes a dispatch command and feeds the resulting state
// change back into the model.
func runDispatch(t *testing.T, m Model, cmd tea.Cmd) (Model, DispatchedMsg) {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(DispatchedMsg)
	require.True(t, ok, "expected a DispatchedMsg")
	m, _ = send(t, m, msg)
	m, _ = send(t, m, StateChangedMsg{})
	return m, msg
}

func TestNew_StartsOnSetupForm(t *testing.T) {
	m, _ := newTestModel(t, nil)

	assert.Equal(t, controller.ModeNewCustomer, m.State().Mode)
	assert.Len(t, m.slots, 6+1+3+1)
	assert.Contains(t, m.View(), i18n.Translate("en", "newCustomerTitle", nil))
	assert.Contains(t, m.View(), "Login with Google")
}

func TestSwitchMode(t *testing.T) {
	m, ctrl := newTestModel(t, nil)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, controller.ModeReturningCustomer, m.State().Mode)
	assert.Equal(t, controller.ModeReturningCustomer, ctrl.CurrentState().Mode)
	assert.Len(t, m.slots, 2+1+3+1)
	assert.Equal(t, 0, m.focus)
	assert.Contains(t, m.View(), "Returning Customer Login")
}

func TestFocusRingWraps(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, len(m.slots)-1, m.focus)
	assert.Equal(t, slotSwitch, m.current().kind)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.focus)
}

func TestSubmitSetup_ShowsFieldErrors(t *testing.T) {
	m, _ := newTestModel(t, nil)

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, dispatched := runDispatch(t, m, cmd)

	assert.NoError(t, dispatched.Err)
	view := m.View()
	assert.Contains(t, view, "First name is required")
	assert.Contains(t, view, "Email is required")
	assert.Contains(t, view, "Please confirm your password")
}

func TestLoginFlow(t *testing.T) {
	store := session.NewMemoryStore(nil)
	m, ctrl := newTestModel(t, store)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = typeText(t, m, "ada@example.com")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "password1")
	assert.NotContains(t, m.View(), "password1", "passwords are masked")

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, dispatched := runDispatch(t, m, cmd)

	require.NoError(t, dispatched.Err)
	assert.True(t, ctrl.CurrentState().Authenticated())
	assert.True(t, m.State().Authenticated())
	assert.Contains(t, m.View(), "Logged in as ada@example.com")
	assert.Empty(t, m.inputs["password"].Value(), "secrets are cleared after login")

	id, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, backend.MockPasswordToken, id.SessionToken)

	// Logout returns to the login form.
	_, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m, _ = runDispatch(t, m, cmd)
	assert.False(t, m.State().Authenticated())
	assert.Equal(t, controller.ModeReturningCustomer, m.State().Mode)
}

func TestProviderButton(t *testing.T) {
	m, ctrl := newTestModel(t, nil)

	// Focus the first provider button: six fields and the submit button.
	for i := 0; i < 7; i++ {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	require.Equal(t, slotProvider, m.current().kind)
	require.Equal(t, auth.ProviderGoogle, m.current().provider)

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = runDispatch(t, m, cmd)

	s := ctrl.CurrentState()
	require.True(t, s.Authenticated())
	assert.Equal(t, auth.ProviderGoogle, s.Identity.Provider)
	assert.Contains(t, m.View(), "googleuser@example.com")
}

func TestChangeLanguageCycles(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, "es", m.State().Language)
	assert.Contains(t, m.View(), i18n.Translate("es", "newCustomerTitle", nil))

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, "he", m.State().Language)
	assert.True(t, m.rtl())
	assert.Contains(t, m.View(), i18n.Translate("he", "newCustomerTitle", nil))
}

func TestPendingFormIgnoresInput(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.state.Pending = true
	m.state.Phase = controller.PhaseSubmitting

	m = typeText(t, m, "ignored")
	assert.Empty(t, m.inputs["firstName"].Value())

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestExpiredSessionIsInvalidated(t *testing.T) {
	id := auth.Identity{Email: "a@b.com", SessionToken: "opaque", Provider: auth.ProviderApple}
	store, err := session.NewMemoryStoreWith(id, nil)
	require.NoError(t, err)
	m, ctrl := newTestModel(t, store)
	require.True(t, m.State().Authenticated())

	m, _ = send(t, m, session.ExpiryWarningMsg{Remaining: 30 * time.Second})
	assert.Contains(t, m.View(), "Session expires in")

	_, cmd := send(t, m, session.ExpiredMsg{})
	m, _ = runDispatch(t, m, cmd)

	s := ctrl.CurrentState()
	assert.False(t, s.Authenticated())
	require.NotNil(t, s.LastError)
	assert.Equal(t, "sessionExpired", s.LastError.Key)
	assert.Contains(t, m.View(), i18n.Translate("en", "sessionExpired", nil))
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.Quitting())
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestAuthenticatedViewTruncatesLongEmail(t *testing.T) {
	email := strings.Repeat("very.long.local.part", 4) + "@example.com"
	id := auth.Identity{Email: email, SessionToken: "opaque", Provider: auth.ProviderPassword}
	store, err := session.NewMemoryStoreWith(id, nil)
	require.NoError(t, err)
	m, _ := newTestModel(t, store)
	require.True(t, m.State().Authenticated())

	view := m.View()
	assert.Contains(t, view, util.TruncateWidth(email, m.theme.FormWidth()/2))
	assert.NotContains(t, view, "@example.com")
}
