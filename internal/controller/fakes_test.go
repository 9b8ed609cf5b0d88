// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/authfront/internal/auth"
)

// fakeBackend returns scripted outcomes with no delay. When gate is set,
// calls signal entered and then wait for gate to close.
type fakeBackend struct {
	mu sync.Mutex

	setupResult auth.SetupResult
	setupErr    error
	loginResult auth.LoginResult
	loginErr    error
	providerErr error

	setupCalls    int
	loginCalls    int
	providerCalls int

	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeBackend) pause() {
	if f.gate == nil {
		return
	}
	f.entered <- struct{}{}
	<-f.gate
}

func (f *fakeBackend) SetupCustomer(ctx context.Context, in auth.SetupInput) (auth.SetupResult, error) {
	f.mu.Lock()
	f.setupCalls++
	f.mu.Unlock()
	f.pause()
	return f.setupResult, f.setupErr
}

func (f *fakeBackend) Login(ctx context.Context, in auth.LoginInput) (auth.LoginResult, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	f.pause()
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) LoginWithProvider(ctx context.Context, p auth.Provider) (auth.LoginResult, error) {
	f.mu.Lock()
	f.providerCalls++
	f.mu.Unlock()
	f.pause()
	if f.providerErr != nil {
		return auth.LoginResult{}, f.providerErr
	}
	return auth.LoginResult{Token: "tok-" + p.String(), Email: p.String() + "@example.com"}, nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setupCalls + f.loginCalls + f.providerCalls
}

// fakeStore records every call.
type fakeStore struct {
	mu sync.Mutex

	identity *auth.Identity
	saved    []auth.Identity
	loads    int
	clears   int
	saveErr  error
	clearErr error
}

func (s *fakeStore) Load() (auth.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.identity == nil {
		return auth.Identity{}, false
	}
	return *s.identity, true
}

func (s *fakeStore) Save(id auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, id)
	if s.saveErr != nil {
		return s.saveErr
	}
	s.identity = &id
	return nil
}

func (s *fakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.identity = nil
	return nil
}

var errDisk = errors.New("disk full")
