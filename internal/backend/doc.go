// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides auth.Backend implementations.
//
// # Key Types
//
//   - Mock: In-process backend with canned outcomes and optional delays
//   - HTTPClient: JSON-over-HTTP client for the authentication service
//
// # Mock Behaviour
//
//   - SetupCustomer fails with CredentialConflict when the email contains "error"
//   - Login fails with InvalidCredentials for invalid@example.com
//   - LoginWithProvider accepts google, facebook and apple
//
// # HTTP Endpoints
//
//	POST {base}/customers            setup
//	POST {base}/sessions             password login
//	POST {base}/sessions/{provider}  federated login
//
// Status codes map onto the auth error kinds: 409 is CredentialConflict,
// 401 and 403 are InvalidCredentials, an unsupported_provider error code is
// UnsupportedProvider, and network failures, timeouts and 5xx responses are
// TransportError.
package backend
