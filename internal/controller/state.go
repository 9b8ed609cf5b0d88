// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"strings"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/validation"
)

// =============================================================================
// PHASE AND MODE
// =============================================================================

// Phase is the controller's top-level state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Mode selects which form an idle controller shows.
type Mode int

const (
	ModeNewCustomer Mode = iota
	ModeReturningCustomer
)

func (m Mode) String() string {
	if m == ModeReturningCustomer {
		return "returningCustomer"
	}
	return "newCustomer"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeNewCustomer {
		return ModeReturningCustomer
	}
	return ModeNewCustomer
}

// TitleKey is the catalog key of the form heading.
func (m Mode) TitleKey() string {
	if m == ModeReturningCustomer {
		return "returningCustomerTitle"
	}
	return "newCustomerTitle"
}

// ParseMode accepts "new", "returning" and the String forms.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new", "newcustomer", "setup":
		return ModeNewCustomer, true
	case "returning", "returningcustomer", "login":
		return ModeReturningCustomer, true
	default:
		return ModeNewCustomer, false
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// Message is user-facing text: a catalog key with parameters, or a literal
// supplied by the backend. Literal wins when both are set.
type Message struct {
	Key     string
	Literal string
	Params  map[string]string
}

// Translator resolves catalog keys; i18n.Translate satisfies it.
type Translator func(lang, key string, params map[string]string) string

// Text renders the message for lang.
func (m Message) Text(lang string, tr Translator) string {
	if m.Literal != "" {
		return m.Literal
	}
	return tr(lang, m.Key, m.Params)
}

func keyMessage(key string) *Message {
	return &Message{Key: key}
}

func (m *Message) clone() *Message {
	if m == nil {
		return nil
	}
	out := *m
	if m.Params != nil {
		out.Params = make(map[string]string, len(m.Params))
		for k, v := range m.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// =============================================================================
// VIEW STATE
// =============================================================================

// AuthViewState is what views render. Snapshots returned by the controller
// share nothing with its internal state.
type AuthViewState struct {
	Phase Phase
	// Mode is the form shown while Idle or Submitting.
	Mode Mode
	// Pending is true exactly while Submitting.
	Pending     bool
	LastError   *Message
	LastSuccess *Message
	// FieldErrors holds the most recent local validation result. It is the
	// zero Result when no validation has run since the last reset.
	FieldErrors validation.Result
	// Identity is set only in PhaseAuthenticated.
	Identity *auth.Identity
	Language string
}

// Authenticated reports whether an identity is held.
func (s AuthViewState) Authenticated() bool {
	return s.Phase == PhaseAuthenticated && s.Identity != nil
}

// FieldError returns the first error code for a form field, if any.
func (s AuthViewState) FieldError(field string) (string, bool) {
	codes := s.FieldErrors.Field(field)
	if len(codes) == 0 {
		return "", false
	}
	return codes[0], true
}

func (s AuthViewState) clone() AuthViewState {
	out := s
	out.LastError = s.LastError.clone()
	out.LastSuccess = s.LastSuccess.clone()
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	if s.FieldErrors.Errors != nil {
		out.FieldErrors = s.FieldErrors.Clone()
	}
	return out
}
