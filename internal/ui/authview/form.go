// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/controller"
	"github.com/jeranaias/authfront/internal/ui/styles"
	"github.com/jeranaias/authfront/internal/validation"
)

// =============================================================================
// FOCUS RING
// =============================================================================

type slotKind int

const (
	slotField slotKind = iota
	slotSubmit
	slotProvider
	slotSwitch
)

// slot is one focusable element of the form.
type slot struct {
	kind     slotKind
	field    string
	provider auth.Provider
}

var providers = []auth.Provider{auth.ProviderGoogle, auth.ProviderFacebook, auth.ProviderApple}

// slotsFor lists the focusable elements of a form, top to bottom.
func slotsFor(mode controller.Mode) []slot {
	fields := validation.SetupFields
	if mode == controller.ModeReturningCustomer {
		fields = validation.LoginFields
	}

	out := make([]slot, 0, len(fields)+len(providers)+2)
	for _, f := range fields {
		out = append(out, slot{kind: slotField, field: f})
	}
	out = append(out, slot{kind: slotSubmit})
	for _, p := range providers {
		out = append(out, slot{kind: slotProvider, provider: p})
	}
	return append(out, slot{kind: slotSwitch})
}

// =============================================================================
// INPUTS
// =============================================================================

func isSecret(field string) bool {
	return field == validation.FieldPassword || field == validation.FieldConfirmPassword
}

func newInputs(theme *styles.Theme) map[string]textinput.Model {
	inputs := make(map[string]textinput.Model, len(validation.SetupFields))
	for _, f := range validation.SetupFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		if f == validation.FieldEmail {
			ti.Placeholder = "name@example.com"
		}
		if isSecret(f) {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		if theme != nil {
			ti.TextStyle = theme.Input
			ti.PlaceholderStyle = theme.Placeholder
			ti.Cursor.Style = theme.Cursor
		}
		inputs[f] = ti
	}
	return inputs
}

func value(inputs map[string]textinput.Model, field string) string {
	return inputs[field].Value()
}

func setupInput(inputs map[string]textinput.Model) auth.SetupInput {
	return auth.SetupInput{
		FirstName:       value(inputs, validation.FieldFirstName),
		LastName:        value(inputs, validation.FieldLastName),
		CompanyName:     value(inputs, validation.FieldCompanyName),
		Email:           strings.TrimSpace(value(inputs, validation.FieldEmail)),
		Password:        value(inputs, validation.FieldPassword),
		ConfirmPassword: value(inputs, validation.FieldConfirmPassword),
	}
}

func loginInput(inputs map[string]textinput.Model) auth.LoginInput {
	return auth.LoginInput{
		Email:    strings.TrimSpace(value(inputs, validation.FieldEmail)),
		Password: value(inputs, validation.FieldPassword),
	}
}

// clearSecrets empties the password fields.
func clearSecrets(inputs map[string]textinput.Model) {
	for f, ti := range inputs {
		if isSecret(f) {
			ti.Reset()
			inputs[f] = ti
		}
	}
}
