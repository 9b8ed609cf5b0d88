// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/controller"
	"github.com/jeranaias/authfront/internal/i18n"
	"github.com/jeranaias/authfront/internal/logging"
	"github.com/jeranaias/authfront/internal/session"
	"github.com/jeranaias/authfront/internal/ui/styles"
)

// Options configures New.
type Options struct {
	Controller *controller.Controller
	Theme      *styles.Theme
	// Watcher schedules InvalidateSession when a JWT session token expires.
	// Nil disables expiry tracking.
	Watcher *session.Watcher
	// Languages is the Ctrl+L cycle order (default: every catalog language).
	Languages []string
	Logger    *zap.Logger
	// Context bounds backend calls started from the view.
	Context context.Context
}

// Model is the bubbletea model of the authentication form.
type Model struct {
	ctrl    *controller.Controller
	theme   *styles.Theme
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	inputs map[string]textinput.Model
	slots  []slot
	focus  int

	state   controller.AuthViewState
	watcher *session.Watcher
	expiry  string

	languages []string
	bridge    *bridge
	ctx       context.Context
	log       *zap.Logger

	width    int
	height   int
	quitting bool
}

// New creates the model. It subscribes to the controller immediately so no
// transition between construction and Init is missed.
func New(opts Options) Model {
	if opts.Controller == nil {
		panic("authview: Controller is required")
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	langs := opts.Languages
	if len(langs) == 0 {
		langs = i18n.Languages()
	}

	sp := spinner.New()
	sp.Spinner = styles.LineSpinner.Bubble()
	sp.Style = theme.Spinner

	state := opts.Controller.CurrentState()
	m := Model{
		ctrl:      opts.Controller,
		theme:     theme,
		keys:      NewKeyMap(state.Language),
		help:      help.New(),
		spinner:   sp,
		inputs:    newInputs(theme),
		slots:     slotsFor(state.Mode),
		state:     state,
		watcher:   opts.Watcher,
		languages: langs,
		bridge:    newBridge(opts.Controller),
		ctx:       ctx,
		log:       log.Named("tui"),
	}
	m.focusSlot(0)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.bridge.wait()}
	if m.state.Authenticated() {
		cmds = append(cmds, m.track())
	}
	return tea.Batch(cmds...)
}

// State returns the last state the view rendered.
func (m Model) State() controller.AuthViewState {
	return m.state
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// =============================================================================
// HELPERS
// =============================================================================

func (m Model) t(key string) string {
	return i18n.Translate(m.state.Language, key, nil)
}

func (m Model) tp(key string, params map[string]string) string {
	return i18n.Translate(m.state.Language, key, params)
}

func (m Model) rtl() bool {
	return i18n.IsRTL(m.state.Language)
}

func (m Model) keyMap() KeyMap {
	if m.state.Authenticated() {
		return m.keys.authenticated()
	}
	return m.keys.form()
}

// focusSlot moves focus to slot i, wrapping around the ring.
func (m *Model) focusSlot(i int) tea.Cmd {
	n := len(m.slots)
	if n == 0 {
		return nil
	}
	i = ((i % n) + n) % n
	m.focus = i

	var cmd tea.Cmd
	for f, ti := range m.inputs {
		if s := m.slots[i]; s.kind == slotField && s.field == f {
			cmd = ti.Focus()
		} else {
			ti.Blur()
		}
		m.inputs[f] = ti
	}
	return cmd
}

func (m Model) current() slot {
	if m.focus < 0 || m.focus >= len(m.slots) {
		return slot{kind: slotSubmit}
	}
	return m.slots[m.focus]
}

// dispatch runs an intent off the UI loop. Submissions block for the length
// of the backend call.
func (m Model) dispatch(in controller.Intent) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		_, err := ctrl.Dispatch(ctx, in)
		return DispatchedMsg{Intent: in, Err: err}
	}
}

// track starts expiry tracking for the current identity.
func (m Model) track() tea.Cmd {
	if m.watcher == nil || m.state.Identity == nil {
		return nil
	}
	if !m.watcher.Track(*m.state.Identity) {
		return nil
	}
	return m.watcher.TickCmd()
}

func (m Model) nextLanguage() string {
	cur := i18n.Canonical(m.state.Language)
	for i, l := range m.languages {
		if l == cur {
			return m.languages[(i+1)%len(m.languages)]
		}
	}
	return m.languages[0]
}
