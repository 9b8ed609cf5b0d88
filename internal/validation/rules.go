// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/authfront/internal/auth"
)

// Field names, matching the form field identifiers.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldCompanyName     = "companyName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// Error codes attached to fields.
const (
	CodeRequired      = "required"
	CodeInvalidFormat = "invalid format"
	CodeTooShort      = "too short"
	CodeMismatch      = "mismatch"
)

// MinPasswordLength is the minimum password length in characters.
const MinPasswordLength = 8

// SetupFields is the setup form in display order.
var SetupFields = []string{
	FieldFirstName, FieldLastName, FieldCompanyName,
	FieldEmail, FieldPassword, FieldConfirmPassword,
}

// LoginFields is the login form in display order.
var LoginFields = []string{FieldEmail, FieldPassword}

// =============================================================================
// FORM VALIDATION
// =============================================================================

// ValidateSetup checks every setup field plus the password confirmation.
func ValidateSetup(in auth.SetupInput) Result {
	r := newResult(SetupFields)

	r.add(FieldFirstName, checkRequired(in.FirstName))
	r.add(FieldLastName, checkRequired(in.LastName))
	r.add(FieldCompanyName, checkRequired(in.CompanyName))
	r.add(FieldEmail, checkEmail(in.Email))
	r.add(FieldPassword, checkPassword(in.Password))

	// Cross-field rule; only ever reported on confirmPassword.
	if in.ConfirmPassword != in.Password {
		r.add(FieldConfirmPassword, CodeMismatch)
	}

	return r.seal()
}

// ValidateLogin checks the login form.
func ValidateLogin(in auth.LoginInput) Result {
	r := newResult(LoginFields)

	r.add(FieldEmail, checkEmail(in.Email))
	r.add(FieldPassword, checkPassword(in.Password))

	return r.seal()
}

// =============================================================================
// FIELD RULES
// =============================================================================

func checkRequired(v string) string {
	if strings.TrimSpace(norm.NFC.String(v)) == "" {
		return CodeRequired
	}
	return ""
}

func checkEmail(v string) string {
	if !IsEmail(v) {
		return CodeInvalidFormat
	}
	return ""
}

func checkPassword(v string) string {
	if utf8.RuneCountInString(v) < MinPasswordLength {
		return CodeTooShort
	}
	return ""
}

// IsEmail reports whether v has the local@domain shape: a non-empty local
// part, and a domain of non-empty dot-separated labels with at least one dot.
// Surrounding whitespace is ignored; inner whitespace is not allowed.
func IsEmail(v string) bool {
	v = strings.TrimSpace(norm.NFC.String(v))
	at := strings.LastIndexByte(v, '@')
	if at <= 0 || at == len(v)-1 {
		return false
	}
	if strings.IndexFunc(v, unicode.IsSpace) >= 0 {
		return false
	}

	domain := v[at+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}
