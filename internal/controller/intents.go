// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import "github.com/jeranaias/authfront/internal/auth"

// Intent is a user action delivered through Dispatch.
type Intent interface {
	intentName() string
}

// SwitchMode toggles between the setup and login forms. Idle only.
type SwitchMode struct{}

// ChangeLanguage sets the display language. Accepted in every phase.
type ChangeLanguage struct {
	Code string
}

// SubmitSetup validates and submits the new-customer form.
// Idle(newCustomer) only.
type SubmitSetup struct {
	Input auth.SetupInput
}

// SubmitLogin validates and submits the login form.
// Idle(returningCustomer) only.
type SubmitLogin struct {
	Input auth.LoginInput
}

// SubmitProviderLogin logs in through a federated provider. Either Idle mode.
type SubmitProviderLogin struct {
	Provider auth.Provider
}

// Logout discards the identity. Authenticated only.
type Logout struct{}

// InvalidateSession discards an identity whose token is no longer valid.
// Authenticated only.
type InvalidateSession struct {
	Reason string
}

func (SwitchMode) intentName() string          { return "switchMode" }
func (ChangeLanguage) intentName() string      { return "changeLanguage" }
func (SubmitSetup) intentName() string         { return "submitSetup" }
func (SubmitLogin) intentName() string         { return "submitLogin" }
func (SubmitProviderLogin) intentName() string { return "submitProviderLogin" }
func (Logout) intentName() string              { return "logout" }
func (InvalidateSession) intentName() string   { return "invalidateSession" }
