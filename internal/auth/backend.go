// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import "context"

// Backend performs the network side of authentication.
//
// Every call either returns a result or fails with an error that KindOf can
// classify. Timeouts are the backend's responsibility and surface as
// KindTransport failures.
type Backend interface {
	// SetupCustomer registers a new customer account.
	SetupCustomer(ctx context.Context, in SetupInput) (SetupResult, error)

	// Login authenticates a returning customer with email and password.
	Login(ctx context.Context, in LoginInput) (LoginResult, error)

	// LoginWithProvider authenticates through a federated provider.
	// Providers other than google, facebook and apple fail with ErrUnsupportedProvider.
	LoginWithProvider(ctx context.Context, p Provider) (LoginResult, error)
}
