// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/logging"
)

// Canned mock responses.
const (
	MockSetupMessage    = "Customer setup successful! Please check your email for verification."
	MockEmailTaken      = "Email address is already taken."
	MockInvalidLogin    = "Invalid credentials"
	MockInvalidEmail    = "invalid@example.com"
	MockPasswordToken   = "mock-auth-token"
	mockConflictTrigger = "error"
)

// Delays are the artificial latencies of the mock.
type Delays struct {
	Setup    time.Duration
	Login    time.Duration
	Provider time.Duration
}

// DemoDelays returns latencies that make the pending state visible.
func DemoDelays() Delays {
	return Delays{
		Setup:    1500 * time.Millisecond,
		Login:    1000 * time.Millisecond,
		Provider: 1200 * time.Millisecond,
	}
}

// UniformDelays applies d to every call.
func UniformDelays(d time.Duration) Delays {
	return Delays{Setup: d, Login: d, Provider: d}
}

// Mock is an in-process auth.Backend.
type Mock struct {
	delays Delays
	log    *zap.Logger
}

// NewMock creates a mock backend.
func NewMock(delays Delays, log *zap.Logger) *Mock {
	if log == nil {
		log = logging.Nop()
	}
	return &Mock{delays: delays, log: log.Named("backend.mock")}
}

var _ auth.Backend = (*Mock)(nil)

// SetupCustomer implements auth.Backend.
func (m *Mock) SetupCustomer(ctx context.Context, in auth.SetupInput) (auth.SetupResult, error) {
	if err := wait(ctx, m.delays.Setup); err != nil {
		return auth.SetupResult{}, err
	}
	if in.Email != "" && strings.Contains(in.Email, mockConflictTrigger) {
		m.log.Debug("MOCK_SETUP_CONFLICT", zap.String("email", logging.MaskEmail(in.Email)))
		return auth.SetupResult{}, auth.NewCredentialConflict(MockEmailTaken)
	}
	return auth.SetupResult{Message: MockSetupMessage}, nil
}

// Login implements auth.Backend.
func (m *Mock) Login(ctx context.Context, in auth.LoginInput) (auth.LoginResult, error) {
	if err := wait(ctx, m.delays.Login); err != nil {
		return auth.LoginResult{}, err
	}
	if in.Email == MockInvalidEmail {
		return auth.LoginResult{}, auth.NewInvalidCredentials(MockInvalidLogin)
	}
	return auth.LoginResult{Token: MockPasswordToken, Email: in.Email}, nil
}

// LoginWithProvider implements auth.Backend.
func (m *Mock) LoginWithProvider(ctx context.Context, p auth.Provider) (auth.LoginResult, error) {
	if err := wait(ctx, m.delays.Provider); err != nil {
		return auth.LoginResult{}, err
	}
	if !p.IsFederated() {
		return auth.LoginResult{}, auth.NewUnsupportedProvider(p.String())
	}
	return auth.LoginResult{
		Token: "mock-" + p.String() + "-token",
		Email: p.String() + "user@example.com",
	}, nil
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return auth.NewTransport("request cancelled", err)
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return auth.NewTransport("request cancelled", ctx.Err())
	}
}
