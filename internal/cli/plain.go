// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// plain.go - Line-mode front end for setup, login and provider login.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/controller"
	"github.com/jeranaias/authfront/internal/i18n"
	"github.com/jeranaias/authfront/internal/util"
	"github.com/jeranaias/authfront/internal/validation"
)

// MaxAttempts bounds how many times a form is re-prompted after
// validation errors.
const MaxAttempts = 3

// ErrNotAuthenticated is returned when a form ends without an identity.
var ErrNotAuthenticated = errors.New("not authenticated")

// lineWidth is the column RTL output is right-aligned to.
const lineWidth = 48

// Plain drives the controller with sequential prompts.
type Plain struct {
	ctrl   *controller.Controller
	prompt Prompter
	out    io.Writer

	mu      sync.Mutex
	pending bool
}

// NewPlain creates a line-mode front end writing to out.
func NewPlain(ctrl *controller.Controller, prompt Prompter, out io.Writer) *Plain {
	return &Plain{ctrl: ctrl, prompt: prompt, out: out}
}

// =============================================================================
// FORMS
// =============================================================================

// Setup runs the new-customer form. A successful setup does not log in.
func (p *Plain) Setup(ctx context.Context) error {
	if err := p.ensureMode(ctx, controller.ModeNewCustomer); err != nil {
		return err
	}

	values := map[string]string{}
	ask := validation.SetupFields
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := p.fill(values, ask); err != nil {
			return err
		}
		s, err := p.submit(ctx, controller.SubmitSetup{Input: auth.SetupInput{
			FirstName:       values[validation.FieldFirstName],
			LastName:        values[validation.FieldLastName],
			CompanyName:     values[validation.FieldCompanyName],
			Email:           values[validation.FieldEmail],
			Password:        values[validation.FieldPassword],
			ConfirmPassword: values[validation.FieldConfirmPassword],
		}})
		if err != nil {
			return err
		}

		switch {
		case s.FieldErrors.Count() > 0:
			ask = p.retryFields(s, validation.SetupFields)
		case s.LastError != nil:
			p.printError(s, *s.LastError)
			return ErrNotAuthenticated
		default:
			if s.LastSuccess != nil {
				p.printSuccess(s, *s.LastSuccess)
			}
			return nil
		}
	}
	return ErrNotAuthenticated
}

// Login runs the returning-customer form. email, when set, pre-fills the
// first attempt.
func (p *Plain) Login(ctx context.Context, email string) error {
	if s := p.ctrl.CurrentState(); s.Authenticated() {
		p.printIdentity(s)
		return nil
	}
	if err := p.ensureMode(ctx, controller.ModeReturningCustomer); err != nil {
		return err
	}

	values := map[string]string{}
	ask := validation.LoginFields
	if email != "" {
		values[validation.FieldEmail] = email
		ask = []string{validation.FieldPassword}
	}

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := p.fill(values, ask); err != nil {
			return err
		}
		s, err := p.submit(ctx, controller.SubmitLogin{Input: auth.LoginInput{
			Email:    values[validation.FieldEmail],
			Password: values[validation.FieldPassword],
		}})
		delete(values, validation.FieldPassword)
		if err != nil {
			return err
		}

		switch {
		case s.Authenticated():
			p.printIdentity(s)
			return nil
		case s.FieldErrors.Count() > 0:
			ask = p.retryFields(s, validation.LoginFields)
			// The password is never kept between attempts.
			if !contains(ask, validation.FieldPassword) {
				ask = append(ask, validation.FieldPassword)
			}
		case s.LastError != nil:
			p.printError(s, *s.LastError)
			ask = validation.LoginFields
		}
	}
	return ErrNotAuthenticated
}

// Provider logs in through a federated provider.
func (p *Plain) Provider(ctx context.Context, name string) error {
	if s := p.ctrl.CurrentState(); s.Authenticated() {
		p.printIdentity(s)
		return nil
	}
	// An unknown name is still submitted so the controller reports it.
	provider, _ := auth.ParseProvider(name)
	s, err := p.submit(ctx, controller.SubmitProviderLogin{Provider: provider})
	if err != nil {
		return err
	}
	if s.Authenticated() {
		p.printIdentity(s)
		return nil
	}
	if s.LastError != nil {
		p.printError(s, *s.LastError)
	}
	return ErrNotAuthenticated
}

// Logout ends the session. Logging out with no session is not an error.
func (p *Plain) Logout(ctx context.Context) error {
	s := p.ctrl.CurrentState()
	if !s.Authenticated() {
		p.println(s, i18n.Translate(s.Language, "notLoggedIn", nil))
		return nil
	}
	s, err := p.ctrl.Dispatch(ctx, controller.Logout{})
	if err != nil {
		return err
	}
	if s.LastError != nil {
		p.printError(s, *s.LastError)
		return nil
	}
	p.println(s, RenderConditional(SuccessStyle, i18n.Translate(s.Language, "loggedOut", nil)))
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (p *Plain) ensureMode(ctx context.Context, want controller.Mode) error {
	s := p.ctrl.CurrentState()
	if s.Authenticated() || s.Mode == want {
		return nil
	}
	_, err := p.ctrl.Dispatch(ctx, controller.SwitchMode{})
	return err
}

// submit dispatches in, printing the loading line once the controller
// reports Submitting.
func (p *Plain) submit(ctx context.Context, in controller.Intent) (controller.AuthViewState, error) {
	unsubscribe := p.ctrl.Subscribe(func(s controller.AuthViewState) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if s.Pending && !p.pending {
			p.println(s, RenderConditional(DimStyle, i18n.Translate(s.Language, "loading", nil)))
		}
		p.pending = s.Pending
	})
	defer unsubscribe()
	return p.ctrl.Dispatch(ctx, in)
}

// fill prompts for each field in ask, in order.
func (p *Plain) fill(values map[string]string, ask []string) error {
	lang := p.ctrl.CurrentState().Language
	labels := make([]string, len(ask))
	for i, field := range ask {
		labels[i] = i18n.Translate(lang, field, nil) + ": "
	}
	width := util.MaxWidth(labels...)

	for i, field := range ask {
		label := labels[i]
		if i18n.IsRTL(lang) {
			label = util.PadLeft(label, width)
		}

		var v string
		var err error
		if field == validation.FieldPassword || field == validation.FieldConfirmPassword {
			v, err = p.prompt.PasswordPrompt(label)
		} else {
			v, err = p.prompt.Prompt(label)
		}
		if err != nil {
			return err
		}
		values[field] = v
	}
	return nil
}

// retryFields prints each field error and returns the fields to ask again,
// in form order.
func (p *Plain) retryFields(s controller.AuthViewState, order []string) []string {
	var ask []string
	for _, field := range order {
		code, ok := s.FieldError(field)
		if !ok {
			continue
		}
		msg := i18n.Translate(s.Language, validation.MessageKey(field, code), nil)
		p.println(s, RenderConditional(ErrorStyle, "  "+msg))
		ask = append(ask, field)
	}
	// A mismatch is fixed by re-entering both passwords.
	if contains(ask, validation.FieldConfirmPassword) && !contains(ask, validation.FieldPassword) {
		ask = append([]string{validation.FieldPassword}, ask...)
		ask = reorder(ask, order)
	}
	return ask
}

func (p *Plain) printError(s controller.AuthViewState, m controller.Message) {
	p.println(s, RenderConditional(ErrorStyle, m.Text(s.Language, i18n.Translate)))
}

func (p *Plain) printSuccess(s controller.AuthViewState, m controller.Message) {
	p.println(s, RenderConditional(SuccessStyle, m.Text(s.Language, i18n.Translate)))
}

func (p *Plain) printIdentity(s controller.AuthViewState) {
	msg := i18n.Translate(s.Language, "loggedInAs", map[string]string{"email": s.Identity.Email})
	p.println(s, RenderConditional(SuccessStyle, msg))
}

// println writes one line, right-aligned for right-to-left languages.
func (p *Plain) println(s controller.AuthViewState, line string) {
	if i18n.IsRTL(s.Language) {
		line = util.PadLeft(line, lineWidth)
	}
	fmt.Fprintln(p.out, line)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// reorder returns the members of subset in the order they appear in order.
func reorder(subset, order []string) []string {
	out := make([]string, 0, len(subset))
	for _, f := range order {
		if contains(subset, f) {
			out = append(out, f)
		}
	}
	return out
}
