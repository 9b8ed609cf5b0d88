// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth defines the domain vocabulary shared by every layer of authfront.
//
// It holds the credential inputs collected by the forms, the authenticated
// Identity, the provider identifiers, the classified error taxonomy and the
// Backend capability that performs the actual network calls.
//
// # Key Types
//
//   - SetupInput / LoginInput: raw form input for new and returning customers
//   - Identity: the authenticated user (email, opaque session token, provider)
//   - Provider: password, google, facebook or apple
//   - Error: classified failure (conflict, invalid credentials, unsupported provider, transport)
//   - Backend: setup, password login and provider login
//
// # Error Classification
//
// Backends return *Error values; callers inspect them with errors.Is against
// the sentinel values or with KindOf:
//
//	if errors.Is(err, auth.ErrInvalidCredentials) {
//	    // show the message to the user
//	}
package auth
