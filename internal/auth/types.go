// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"fmt"
	"strings"
)

// =============================================================================
// PROVIDERS
// =============================================================================

// Provider identifies how an Identity was authenticated.
type Provider string

const (
	// ProviderPassword is local email/password authentication.
	ProviderPassword Provider = "password"

	// ProviderGoogle is federated login through Google.
	ProviderGoogle Provider = "google"

	// ProviderFacebook is federated login through Facebook.
	ProviderFacebook Provider = "facebook"

	// ProviderApple is federated login through Apple.
	ProviderApple Provider = "apple"
)

// FederatedProviders lists the third-party providers in display order.
var FederatedProviders = []Provider{ProviderGoogle, ProviderFacebook, ProviderApple}

// IsFederated reports whether p is one of the supported third-party providers.
func (p Provider) IsFederated() bool {
	for _, fp := range FederatedProviders {
		if p == fp {
			return true
		}
	}
	return false
}

// Valid reports whether p is a known provider, including password.
func (p Provider) Valid() bool {
	return p == ProviderPassword || p.IsFederated()
}

// String implements fmt.Stringer.
func (p Provider) String() string {
	return string(p)
}

// ParseProvider normalizes user input into a Provider.
// Unknown names are returned as-is together with an UnsupportedProvider error
// so callers can still forward them to a backend that may know better.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if !p.IsFederated() {
		return p, NewUnsupportedProvider(string(p))
	}
	return p, nil
}

// =============================================================================
// CREDENTIAL INPUT
// =============================================================================

// SetupInput is the new-customer form.
type SetupInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	CompanyName     string `json:"companyName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginInput is the returning-customer form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoString keeps passwords out of %#v output.
func (in SetupInput) GoString() string {
	return fmt.Sprintf("auth.SetupInput{FirstName:%q, LastName:%q, CompanyName:%q, Email:%q, Password:[REDACTED]}",
		in.FirstName, in.LastName, in.CompanyName, in.Email)
}

// GoString keeps passwords out of %#v output.
func (in LoginInput) GoString() string {
	return fmt.Sprintf("auth.LoginInput{Email:%q, Password:[REDACTED]}", in.Email)
}

// =============================================================================
// IDENTITY
// =============================================================================

// Identity is an authenticated user. It is created by a successful login or
// provider login and destroyed by logout or token invalidation.
type Identity struct {
	Email        string   `json:"email"`
	SessionToken string   `json:"session_token"`
	Provider     Provider `json:"provider"`
}

// IsZero reports whether the identity carries no session.
func (id Identity) IsZero() bool {
	return id.SessionToken == "" && id.Email == ""
}

// String renders the identity without the token.
func (id Identity) String() string {
	return fmt.Sprintf("%s via %s", id.Email, id.Provider)
}

// =============================================================================
// BACKEND RESULTS
// =============================================================================

// SetupResult is returned by a successful customer setup.
type SetupResult struct {
	Message string `json:"message"`
}

// LoginResult is returned by a successful password or provider login.
type LoginResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Identity converts a login result into an Identity for the given provider.
func (r LoginResult) Identity(p Provider) Identity {
	return Identity{Email: r.Email, SessionToken: r.Token, Provider: p}
}
