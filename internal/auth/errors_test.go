// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewInvalidCredentials("Invalid credentials")

	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.False(t, errors.Is(err, ErrCredentialConflict))
	assert.True(t, errors.Is(err, NewInvalidCredentials("Invalid credentials")))
	assert.False(t, errors.Is(err, NewInvalidCredentials("something else")))
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("login: %w", NewCredentialConflict("Email address is already taken."))

	assert.True(t, errors.Is(err, ErrCredentialConflict))
	assert.Equal(t, KindCredentialConflict, KindOf(err))
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", NewInvalidCredentials("Invalid credentials"), "Invalid credentials"},
		{"kind fallback", &Error{Kind: KindTransport}, "TransportError"},
		{"with cause", NewTransport("backend unreachable", errors.New("dial tcp: refused")), "backend unreachable: dial tcp: refused"},
		{"provider", NewUnsupportedProvider("twitter"), "Unsupported provider: twitter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindTransport, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindTransport, KindOf(fmt.Errorf("call: %w", context.Canceled)))
	assert.Equal(t, KindUnsupportedProvider, KindOf(NewUnsupportedProvider("x")))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	plain := errors.New("boom")
	ce := Classify(plain)
	require.NotNil(t, ce)
	assert.Equal(t, KindUnknown, ce.Kind)
	assert.Empty(t, ce.Message)
	assert.ErrorIs(t, ce, plain)

	orig := NewInvalidCredentials("nope")
	assert.Same(t, orig, Classify(fmt.Errorf("wrap: %w", orig)))
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" Google ")
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, p)

	p, err = ParseProvider("twitter")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Equal(t, Provider("twitter"), p)

	assert.True(t, ProviderPassword.Valid())
	assert.False(t, ProviderPassword.IsFederated())
}

func TestInputGoStringRedactsPassword(t *testing.T) {
	in := LoginInput{Email: "a@b.com", Password: "hunter2hunter2"}
	out := fmt.Sprintf("%#v", in)

	assert.Contains(t, out, "a@b.com")
	assert.NotContains(t, out, "hunter2")
}
