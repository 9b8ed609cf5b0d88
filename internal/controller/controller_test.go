// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/backend"
	"github.com/jeranaias/authfront/internal/i18n"
	"github.com/jeranaias/authfront/internal/session"
	"github.com/jeranaias/authfront/internal/validation"
)

var ctx = context.Background()

func validSetup() auth.SetupInput {
	return auth.SetupInput{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		CompanyName:     "Analytical Engines",
		Email:           "ada@example.com",
		Password:        "password1",
		ConfirmPassword: "password1",
	}
}

func newTestController(t *testing.T, b *fakeBackend, s *fakeStore, mode Mode) *Controller {
	t.Helper()
	return New(Options{Backend: b, Store: s, Language: "en", Mode: mode})
}

func dispatch(t *testing.T, c *Controller, in Intent) AuthViewState {
	t.Helper()
	s, err := c.Dispatch(ctx, in)
	require.NoError(t, err)
	return s
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

func TestNew_DefaultsToSetupForm(t *testing.T) {
	store := &fakeStore{}
	c := New(Options{Backend: &fakeBackend{}, Store: store})

	s := c.CurrentState()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ModeNewCustomer, s.Mode)
	assert.False(t, s.Pending)
	assert.Nil(t, s.Identity)
	assert.Nil(t, s.LastError)
	assert.Equal(t, "en", s.Language)
	assert.Equal(t, 1, store.loads)
}

func TestNew_RestoresPersistedSession(t *testing.T) {
	id := auth.Identity{Email: "a@b.com", SessionToken: "tok1", Provider: auth.ProviderPassword}
	store := &fakeStore{identity: &id}
	b := &fakeBackend{}

	c := newTestController(t, b, store, ModeNewCustomer)

	s := c.CurrentState()
	assert.Equal(t, PhaseAuthenticated, s.Phase)
	require.NotNil(t, s.Identity)
	assert.Equal(t, id, *s.Identity)
	assert.True(t, s.Authenticated())

	c.CurrentState()
	assert.Equal(t, 1, store.loads, "Load runs once, at construction")
	assert.Zero(t, b.calls())
}

func TestNew_LanguageIsCanonicalized(t *testing.T) {
	c := New(Options{Backend: &fakeBackend{}, Store: &fakeStore{}, Language: "es-MX"})
	assert.Equal(t, "es", c.CurrentState().Language)
}

func TestNew_RequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { New(Options{Store: &fakeStore{}}) })
	assert.Panics(t, func() { New(Options{Backend: &fakeBackend{}}) })
}

// =============================================================================
// LOGIN
// =============================================================================

func TestSubmitLogin_Success(t *testing.T) {
	b := &fakeBackend{loginResult: auth.LoginResult{Token: "tok1", Email: "a@b.com"}}
	store := &fakeStore{}
	c := newTestController(t, b, store, ModeReturningCustomer)

	s := dispatch(t, c, SubmitLogin{Input: auth.LoginInput{Email: "a@b.com", Password: "password1"}})

	want := auth.Identity{Email: "a@b.com", SessionToken: "tok1", Provider: auth.ProviderPassword}
	assert.Equal(t, PhaseAuthenticated, s.Phase)
	assert.False(t, s.Pending)
	require.NotNil(t, s.Identity)
	assert.Equal(t, want, *s.Identity)
	assert.Nil(t, s.LastError)
	assert.Equal(t, []auth.Identity{want}, store.saved)
}

func TestSubmitLogin_InvalidCredentials(t *testing.T) {
	b := &fakeBackend{loginErr: auth.NewInvalidCredentials("Invalid credentials")}
	store := &fakeStore{}
	c := newTestController(t, b, store, ModeReturningCustomer)

	s := dispatch(t, c, SubmitLogin{Input: auth.LoginInput{Email: "invalid@example.com", Password: "password1"}})

	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ModeReturningCustomer, s.Mode)
	assert.False(t, s.Pending)
	assert.Nil(t, s.Identity)
	require.NotNil(t, s.LastError)
	assert.Equal(t, "Invalid credentials", s.LastError.Literal)
	assert.Empty(t, store.saved)
}

func TestSubmitLogin_ValidationStopsBeforeBackend(t *testing.T) {
	b := &fakeBackend{}
	c := newTestController(t, b, &fakeStore{}, ModeReturningCustomer)

	s := dispatch(t, c, SubmitLogin{Input: auth.LoginInput{Email: "nope", Password: "short"}})

	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Zero(t, b.calls())
	require.NotNil(t, s.LastError)
	assert.Equal(t, "invalidEmail", s.LastError.Key)
	assert.False(t, s.FieldErrors.Valid)
	code, ok := s.FieldError(validation.FieldPassword)
	assert.True(t, ok)
	assert.Equal(t, validation.CodeTooShort, code)
}

func TestSubmitLogin_WrongMode(t *testing.T) {
	b := &fakeBackend{}
	c := newTestController(t, b, &fakeStore{}, ModeNewCustomer)
	before := c.CurrentState()

	s, err := c.Dispatch(ctx, SubmitLogin{Input: auth.LoginInput{Email: "a@b.com", Password: "password1"}})
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, before, s)
	assert.Zero(t, b.calls())
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

func TestBackendFailureMessages(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		provider   auth.Provider
		wantKey    string
		wantLit    string
		wantParams map[string]string
	}{
		{name: "transport", err: auth.NewTransport("dial tcp: refused", errors.New("refused")), wantKey: "generalError"},
		{name: "deadline", err: context.DeadlineExceeded, wantKey: "generalError"},
		{name: "unclassified", err: errors.New("boom"), wantKey: "generalError"},
		{name: "invalid without message", err: auth.NewInvalidCredentials(""), wantKey: "invalidCredentials"},
		{name: "conflict without message", err: auth.NewCredentialConflict(""), wantKey: "emailTaken"},
		{name: "conflict with message", err: auth.NewCredentialConflict("Email address is already taken."), wantLit: "Email address is already taken."},
		{
			name:       "unsupported provider without message",
			err:        &auth.Error{Kind: auth.KindUnsupportedProvider},
			provider:   auth.ProviderApple,
			wantKey:    "unsupportedProvider",
			wantParams: map[string]string{"provider": "apple"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{loginErr: tt.err, providerErr: tt.err}
			c := newTestController(t, b, &fakeStore{}, ModeReturningCustomer)

			var s AuthViewState
			if tt.provider != "" {
				s = dispatch(t, c, SubmitProviderLogin{Provider: tt.provider})
			} else {
				s = dispatch(t, c, SubmitLogin{Input: auth.LoginInput{Email: "a@b.com", Password: "password1"}})
			}

			assert.Equal(t, PhaseIdle, s.Phase)
			assert.Equal(t, ModeReturningCustomer, s.Mode)
			require.NotNil(t, s.LastError)
			assert.Equal(t, tt.wantKey, s.LastError.Key)
			assert.Equal(t, tt.wantLit, s.LastError.Literal)
			if tt.wantParams != nil {
				assert.Equal(t, tt.wantParams, s.LastError.Params)
			}
		})
	}
}

func TestMessageText(t *testing.T) {
	lit := Message{Literal: "Invalid credentials", Key: "invalidCredentials"}
	assert.Equal(t, "Invalid credentials", lit.Text("es", i18n.Translate))

	key := Message{Key: "invalidCredentials"}
	assert.Equal(t, "Correo electrónico o contraseña no válidos.", key.Text("es", i18n.Translate))

	param := Message{Key: "unsupportedProvider", Params: map[string]string{"provider": "twitter"}}
	assert.Equal(t, "Unsupported provider: twitter", param.Text("en", i18n.Translate))
}

// =============================================================================
// SETUP
// =============================================================================

func TestSubmitSetup_Success(t *testing.T) {
	b := &fakeBackend{setupResult: auth.SetupResult{Message: backend.MockSetupMessage}}
	store := &fakeStore{}
	c := newTestController(t, b, store, ModeNewCustomer)

	// A stale error from an earlier attempt must be cleared.
	dispatch(t, c, SubmitSetup{Input: auth.SetupInput{}})
	require.NotNil(t, c.CurrentState().LastError)

	s := dispatch(t, c, SubmitSetup{Input: validSetup()})

	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ModeNewCustomer, s.Mode)
	assert.Nil(t, s.LastError)
	require.NotNil(t, s.LastSuccess)
	assert.Equal(t, backend.MockSetupMessage, s.LastSuccess.Literal)
	assert.Nil(t, s.Identity)
	assert.Empty(t, store.saved, "setup does not authenticate")
	assert.Equal(t, 1, b.setupCalls)
}

func TestSubmitSetup_SuccessWithoutMessage(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, &fakeStore{}, ModeNewCustomer)
	s := dispatch(t, c, SubmitSetup{Input: validSetup()})
	require.NotNil(t, s.LastSuccess)
	assert.Equal(t, "accountSetupSuccess", s.LastSuccess.Key)
}

func TestSubmitSetup_Conflict(t *testing.T) {
	b := &fakeBackend{setupErr: auth.NewCredentialConflict(backend.MockEmailTaken)}
	c := newTestController(t, b, &fakeStore{}, ModeNewCustomer)

	s := dispatch(t, c, SubmitSetup{Input: validSetup()})

	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ModeNewCustomer, s.Mode)
	assert.Nil(t, s.LastSuccess)
	require.NotNil(t, s.LastError)
	assert.Equal(t, backend.MockEmailTaken, s.LastError.Literal)
}

func TestSubmitSetup_ValidationReportsFirstField(t *testing.T) {
	b := &fakeBackend{}
	c := newTestController(t, b, &fakeStore{}, ModeNewCustomer)

	in := validSetup()
	in.ConfirmPassword = "different"
	s := dispatch(t, c, SubmitSetup{Input: in})

	assert.Zero(t, b.calls())
	require.NotNil(t, s.LastError)
	assert.Equal(t, "passwordMismatch", s.LastError.Key)
	assert.Equal(t, []string{validation.CodeMismatch}, s.FieldErrors.Field(validation.FieldConfirmPassword))
	assert.Empty(t, s.FieldErrors.Field(validation.FieldPassword))

	s = dispatch(t, c, SubmitSetup{Input: auth.SetupInput{}})
	assert.Equal(t, "firstNameRequired", s.LastError.Key)
	assert.Equal(t, 6, s.FieldErrors.Count())
}

// =============================================================================
// PROVIDER LOGIN
// =============================================================================

func TestSubmitProviderLogin_Success(t *testing.T) {
	for _, mode := range []Mode{ModeNewCustomer, ModeReturningCustomer} {
		store := &fakeStore{}
		c := newTestController(t, &fakeBackend{}, store, mode)

		s := dispatch(t, c, SubmitProviderLogin{Provider: auth.ProviderGoogle})

		assert.Equal(t, PhaseAuthenticated, s.Phase)
		require.NotNil(t, s.Identity)
		assert.Equal(t, auth.ProviderGoogle, s.Identity.Provider)
		assert.Equal(t, "tok-google", s.Identity.SessionToken)
		assert.Len(t, store.saved, 1)
	}
}

func TestSubmitProviderLogin_Unsupported(t *testing.T) {
	b := &fakeBackend{}
	store := &fakeStore{}
	c := newTestController(t, b, store, ModeReturningCustomer)

	s := dispatch(t, c, SubmitProviderLogin{Provider: "twitter"})

	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ModeReturningCustomer, s.Mode)
	require.NotNil(t, s.LastError)
	assert.Equal(t, "unsupportedProvider", s.LastError.Key)
	assert.Equal(t, "twitter", s.LastError.Params["provider"])
	assert.Zero(t, b.calls())
	assert.Empty(t, store.saved)
}

func TestSubmitProviderLogin_BackendRejects(t *testing.T) {
	b := &fakeBackend{providerErr: auth.NewUnsupportedProvider("apple")}
	c := newTestController(t, b, &fakeStore{}, ModeNewCustomer)

	s := dispatch(t, c, SubmitProviderLogin{Provider: auth.ProviderApple})

	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ModeNewCustomer, s.Mode)
	require.NotNil(t, s.LastError)
	assert.Equal(t, "Unsupported provider: apple", s.LastError.Literal)
}

func TestSubmitProviderLogin_SaveFailureStillAuthenticates(t *testing.T) {
	store := &fakeStore{saveErr: errDisk}
	c := newTestController(t, &fakeBackend{}, store, ModeNewCustomer)

	s := dispatch(t, c, SubmitProviderLogin{Provider: auth.ProviderFacebook})
	assert.Equal(t, PhaseAuthenticated, s.Phase)
	assert.Len(t, store.saved, 1)
}

// =============================================================================
// MODE, LANGUAGE, LOGOUT
// =============================================================================

func TestSwitchMode(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, &fakeStore{}, ModeNewCustomer)

	dispatch(t, c, SubmitSetup{Input: auth.SetupInput{}})
	s := dispatch(t, c, SwitchMode{})
	assert.Equal(t, ModeReturningCustomer, s.Mode)
	assert.Nil(t, s.LastError)
	assert.Nil(t, s.FieldErrors.Errors)

	s = dispatch(t, c, SwitchMode{})
	assert.Equal(t, ModeNewCustomer, s.Mode)
}

func TestSwitchMode_RejectedWhenAuthenticated(t *testing.T) {
	id := auth.Identity{Email: "a@b.com", SessionToken: "t", Provider: auth.ProviderPassword}
	c := newTestController(t, &fakeBackend{}, &fakeStore{identity: &id}, ModeNewCustomer)

	for _, in := range []Intent{
		SwitchMode{},
		SubmitSetup{Input: validSetup()},
		SubmitLogin{Input: auth.LoginInput{Email: "a@b.com", Password: "password1"}},
		SubmitProviderLogin{Provider: auth.ProviderGoogle},
	} {
		before := c.CurrentState()
		s, err := c.Dispatch(ctx, in)
		assert.ErrorIs(t, err, ErrNotAllowed, "%T", in)
		assert.Equal(t, before, s)
	}
}

func TestChangeLanguage(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, &fakeStore{}, ModeReturningCustomer)
	dispatch(t, c, SubmitLogin{Input: auth.LoginInput{}})
	before := c.CurrentState()

	s := dispatch(t, c, ChangeLanguage{Code: "ja"})
	assert.Equal(t, "ja", s.Language)
	assert.Equal(t, before.Mode, s.Mode)
	assert.Equal(t, before.Phase, s.Phase)
	assert.Equal(t, before.LastError, s.LastError)

	s = dispatch(t, c, ChangeLanguage{Code: "xx"})
	assert.Equal(t, "xx", s.Language)
}

func TestLogout(t *testing.T) {
	id := auth.Identity{Email: "a@b.com", SessionToken: "t", Provider: auth.ProviderPassword}
	store := &fakeStore{identity: &id}
	c := newTestController(t, &fakeBackend{}, store, ModeNewCustomer)

	s := dispatch(t, c, Logout{})
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ModeReturningCustomer, s.Mode)
	assert.Nil(t, s.Identity)
	assert.Nil(t, s.LastError)
	assert.Equal(t, 1, store.clears)

	_, err := c.Dispatch(ctx, Logout{})
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, 1, store.clears)
}

func TestLogout_ClearFailureIsVisible(t *testing.T) {
	id := auth.Identity{Email: "a@b.com", SessionToken: "t", Provider: auth.ProviderPassword}
	c := newTestController(t, &fakeBackend{}, &fakeStore{identity: &id, clearErr: errDisk}, ModeNewCustomer)

	s := dispatch(t, c, Logout{})
	assert.Equal(t, PhaseIdle, s.Phase)
	require.NotNil(t, s.LastError)
	assert.Equal(t, "generalError", s.LastError.Key)
}

func TestInvalidateSession(t *testing.T) {
	id := auth.Identity{Email: "a@b.com", SessionToken: "t", Provider: auth.ProviderGoogle}
	store := &fakeStore{identity: &id}
	c := newTestController(t, &fakeBackend{}, store, ModeNewCustomer)

	s := dispatch(t, c, InvalidateSession{Reason: "token expired"})
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ModeReturningCustomer, s.Mode)
	require.NotNil(t, s.LastError)
	assert.Equal(t, "sessionExpired", s.LastError.Key)
	assert.Equal(t, 1, store.clears)
}

func TestDispatch_UnknownIntent(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, &fakeStore{}, ModeNewCustomer)
	_, err := c.Dispatch(ctx, nil)
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestSubmitting_RejectsSecondSubmission(t *testing.T) {
	b := &fakeBackend{
		loginResult: auth.LoginResult{Token: "tok1", Email: "a@b.com"},
		entered:     make(chan struct{}),
		gate:        make(chan struct{}),
	}
	store := &fakeStore{}
	c := newTestController(t, b, store, ModeReturningCustomer)

	done := make(chan AuthViewState)
	go func() {
		s, _ := c.Dispatch(ctx, SubmitLogin{Input: auth.LoginInput{Email: "a@b.com", Password: "password1"}})
		done <- s
	}()
	<-b.entered

	pending := c.CurrentState()
	require.Equal(t, PhaseSubmitting, pending.Phase)
	require.True(t, pending.Pending)

	for _, in := range []Intent{
		SubmitLogin{Input: auth.LoginInput{Email: "b@c.com", Password: "password2"}},
		SubmitSetup{Input: validSetup()},
		SubmitProviderLogin{Provider: auth.ProviderApple},
		SubmitProviderLogin{Provider: "twitter"},
		SwitchMode{},
		Logout{},
	} {
		s, err := c.Dispatch(ctx, in)
		assert.ErrorIs(t, err, ErrBusy, "%T", in)
		assert.Equal(t, pending, s)
		assert.Equal(t, pending, c.CurrentState())
	}
	assert.Equal(t, 1, b.calls())

	// Language changes are display-only and always accepted.
	s := dispatch(t, c, ChangeLanguage{Code: "he"})
	assert.Equal(t, PhaseSubmitting, s.Phase)
	assert.True(t, s.Pending)

	close(b.gate)
	final := <-done

	assert.Equal(t, PhaseAuthenticated, final.Phase)
	assert.False(t, final.Pending)
	assert.Equal(t, "he", final.Language)
	assert.Len(t, store.saved, 1)
}

func TestSubscribe(t *testing.T) {
	c := newTestController(t, &fakeBackend{loginResult: auth.LoginResult{Token: "t", Email: "a@b.com"}}, &fakeStore{}, ModeNewCustomer)

	var mu sync.Mutex
	var phases []Phase
	unsubscribe := c.Subscribe(func(s AuthViewState) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase)
	})

	dispatch(t, c, SwitchMode{})
	dispatch(t, c, SubmitLogin{Input: auth.LoginInput{Email: "a@b.com", Password: "password1"}})

	mu.Lock()
	assert.Equal(t, []Phase{PhaseIdle, PhaseSubmitting, PhaseAuthenticated}, phases)
	mu.Unlock()

	unsubscribe()
	unsubscribe()
	dispatch(t, c, ChangeLanguage{Code: "es"})

	mu.Lock()
	assert.Len(t, phases, 3)
	mu.Unlock()
}

func TestSubscribe_SubscriberMayDispatch(t *testing.T) {
	c := newTestController(t, &fakeBackend{loginResult: auth.LoginResult{Token: "t", Email: "a@b.com"}}, &fakeStore{}, ModeReturningCustomer)

	var languages []string
	c.Subscribe(func(s AuthViewState) {
		languages = append(languages, s.Language)
		if s.Authenticated() && s.Language != "es" {
			_, err := c.Dispatch(ctx, ChangeLanguage{Code: "es"})
			assert.NoError(t, err)
		}
	})

	done := make(chan AuthViewState, 1)
	go func() {
		s, _ := c.Dispatch(ctx, SubmitLogin{Input: auth.LoginInput{Email: "a@b.com", Password: "password1"}})
		done <- s
	}()

	select {
	case s := <-done:
		assert.Equal(t, PhaseAuthenticated, s.Phase)
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch did not return while a subscriber dispatched")
	}

	assert.Equal(t, "es", c.CurrentState().Language)
	assert.Equal(t, []string{"en", "en", "es"}, languages)

	// The controller still accepts intents afterwards.
	s := dispatch(t, c, Logout{})
	assert.Equal(t, PhaseIdle, s.Phase)
}

func TestSubscribe_RejectedIntentsDoNotNotify(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, &fakeStore{}, ModeNewCustomer)

	calls := 0
	c.Subscribe(func(AuthViewState) { calls++ })

	_, err := c.Dispatch(ctx, Logout{})
	require.ErrorIs(t, err, ErrNotAllowed)
	assert.Zero(t, calls)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, &fakeStore{}, ModeNewCustomer)
	s := dispatch(t, c, SubmitSetup{Input: auth.SetupInput{}})

	s.LastError.Key = "tampered"
	s.FieldErrors.Errors[validation.FieldEmail] = nil

	again := c.CurrentState()
	assert.Equal(t, "firstNameRequired", again.LastError.Key)
	assert.NotEmpty(t, again.FieldErrors.Field(validation.FieldEmail))
}

func TestConcurrentDispatch(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, &fakeStore{}, ModeNewCustomer)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.Dispatch(ctx, ChangeLanguage{Code: "es"})
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Dispatch(ctx, SubmitProviderLogin{Provider: auth.ProviderGoogle})
		}()
	}
	wg.Wait()

	s := c.CurrentState()
	assert.Equal(t, PhaseAuthenticated, s.Phase)
	assert.False(t, s.Pending)
}

// =============================================================================
// WITH REAL COLLABORATORS
// =============================================================================

func TestWithMockBackendAndMemoryStore(t *testing.T) {
	store := session.NewMemoryStore(nil)
	c := New(Options{
		Backend: backend.NewMock(backend.Delays{}, nil),
		Store:   store,
		Mode:    ModeReturningCustomer,
	})

	s := dispatch(t, c, SubmitLogin{Input: auth.LoginInput{Email: backend.MockInvalidEmail, Password: "password1"}})
	require.NotNil(t, s.LastError)
	assert.Equal(t, backend.MockInvalidLogin, s.LastError.Literal)

	s = dispatch(t, c, SubmitLogin{Input: auth.LoginInput{Email: "a@b.com", Password: "password1"}})
	assert.Equal(t, PhaseAuthenticated, s.Phase)

	// A second controller on the same store restores the session.
	restored := New(Options{Backend: backend.NewMock(backend.Delays{}, nil), Store: store})
	rs := restored.CurrentState()
	assert.Equal(t, PhaseAuthenticated, rs.Phase)
	assert.Equal(t, backend.MockPasswordToken, rs.Identity.SessionToken)
	assert.Equal(t, 2, store.Loads())
}

func TestDemoDelayShowsPending(t *testing.T) {
	c := New(Options{
		Backend: backend.NewMock(backend.UniformDelays(50*time.Millisecond), nil),
		Store:   session.NewMemoryStore(nil),
	})

	sawPending := make(chan struct{}, 1)
	c.Subscribe(func(s AuthViewState) {
		if s.Pending {
			select {
			case sawPending <- struct{}{}:
			default:
			}
		}
	})

	s := dispatch(t, c, SubmitProviderLogin{Provider: auth.ProviderApple})
	assert.Equal(t, PhaseAuthenticated, s.Phase)
	select {
	case <-sawPending:
	default:
		t.Fatal("subscriber never saw the pending state")
	}
}
