// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/authfront/internal/auth"
)

func TestMock_SetupCustomer(t *testing.T) {
	m := NewMock(Delays{}, nil)
	ctx := context.Background()

	res, err := m.SetupCustomer(ctx, auth.SetupInput{Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, MockSetupMessage, res.Message)

	_, err = m.SetupCustomer(ctx, auth.SetupInput{Email: "error@example.com"})
	require.ErrorIs(t, err, auth.ErrCredentialConflict)
	assert.Equal(t, auth.KindCredentialConflict, auth.KindOf(err))
	assert.Equal(t, MockEmailTaken, auth.Classify(err).Message)
}

func TestMock_Login(t *testing.T) {
	m := NewMock(Delays{}, nil)
	ctx := context.Background()

	res, err := m.Login(ctx, auth.LoginInput{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, auth.LoginResult{Token: MockPasswordToken, Email: "a@b.com"}, res)

	_, err = m.Login(ctx, auth.LoginInput{Email: MockInvalidEmail, Password: "password1"})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, MockInvalidLogin, auth.Classify(err).Message)
}

func TestMock_LoginWithProvider(t *testing.T) {
	m := NewMock(Delays{}, nil)
	ctx := context.Background()

	for _, p := range auth.FederatedProviders {
		res, err := m.LoginWithProvider(ctx, p)
		require.NoError(t, err, p)
		assert.Equal(t, "mock-"+p.String()+"-token", res.Token)
		assert.Equal(t, p.String()+"user@example.com", res.Email)
	}

	for _, p := range []auth.Provider{"github", "", auth.ProviderPassword} {
		_, err := m.LoginWithProvider(ctx, p)
		require.ErrorIs(t, err, auth.ErrUnsupportedProvider, p)
		assert.Equal(t, "Unsupported provider: "+p.String(), auth.Classify(err).Message)
	}
}

func TestMock_DelayHonoursCancellation(t *testing.T) {
	m := NewMock(UniformDelays(time.Hour), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.Login(ctx, auth.LoginInput{Email: "a@b.com", Password: "password1"})
	require.Error(t, err)
	assert.Equal(t, auth.KindTransport, auth.KindOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMock_Delay(t *testing.T) {
	m := NewMock(UniformDelays(30*time.Millisecond), nil)

	start := time.Now()
	_, err := m.LoginWithProvider(context.Background(), auth.ProviderApple)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestDemoDelays(t *testing.T) {
	d := DemoDelays()
	assert.Equal(t, 1500*time.Millisecond, d.Setup)
	assert.Equal(t, 1000*time.Millisecond, d.Login)
	assert.Equal(t, 1200*time.Millisecond, d.Provider)
}
