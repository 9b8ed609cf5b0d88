// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/i18n"
	"github.com/jeranaias/authfront/internal/logging"
	"github.com/jeranaias/authfront/internal/validation"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy rejects an intent received while a submission is in flight.
	ErrBusy = errors.New("submission in progress")
	// ErrNotAllowed rejects an intent that is invalid in the current state.
	ErrNotAllowed = errors.New("intent not allowed in current state")
	// ErrUnknownIntent rejects intent types the controller does not know.
	ErrUnknownIntent = errors.New("unknown intent")
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Store is the persistence the controller needs. session.Store satisfies it.
type Store interface {
	Load() (auth.Identity, bool)
	Save(id auth.Identity) error
	Clear() error
}

// Options configures New.
type Options struct {
	Backend auth.Backend
	Store   Store

	// Language is the initial display language (default: en).
	Language string
	// Mode is the initial form when no session is restored (default: newCustomer).
	Mode Mode

	// Logger receives AUTH_* events (default: discard).
	Logger *zap.Logger
	// CanonicalLanguage normalizes language codes (default: i18n.Canonical).
	CanonicalLanguage func(string) string
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the authentication state machine. It is safe for concurrent use.
type Controller struct {
	backend   auth.Backend
	store     Store
	log       *zap.Logger
	canonical func(string) string

	mu      sync.Mutex
	state   AuthViewState
	version uint64

	subMu     sync.Mutex
	subs      []subscriber
	nextSubID int

	// notifyMu guards the delivery queue. It is never held while a
	// subscriber runs.
	notifyMu   sync.Mutex
	queue      []notice
	delivering bool
	delivered  uint64
}

type notice struct {
	state   AuthViewState
	version uint64
}

type subscriber struct {
	id int
	fn func(AuthViewState)
}

// New creates a controller and restores any persisted session. Store.Load is
// called exactly once, here.
func New(opts Options) *Controller {
	if opts.Backend == nil {
		panic("controller: Backend is required")
	}
	if opts.Store == nil {
		panic("controller: Store is required")
	}

	c := &Controller{
		backend:   opts.Backend,
		store:     opts.Store,
		log:       opts.Logger,
		canonical: opts.CanonicalLanguage,
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	c.log = c.log.Named("controller")
	if c.canonical == nil {
		c.canonical = i18n.Canonical
	}

	c.state = AuthViewState{
		Phase:    PhaseIdle,
		Mode:     opts.Mode,
		Language: c.canonical(opts.Language),
	}

	if id, ok := c.store.Load(); ok {
		c.state.Phase = PhaseAuthenticated
		c.state.Identity = &id
		c.log.Info("SESSION_RESTORED",
			zap.String("email", logging.MaskEmail(id.Email)),
			zap.String("provider", id.Provider.String()))
	}

	return c
}

// CurrentState returns a snapshot of the current state.
func (c *Controller) CurrentState() AuthViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription.
func (c *Controller) Subscribe(fn func(AuthViewState)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Dispatch applies an intent and returns the resulting state. Rejected
// intents return the unchanged state with ErrBusy, ErrNotAllowed or
// ErrUnknownIntent. Submit intents block until the backend call resolves;
// outcomes, including failures, are reported through the state.
func (c *Controller) Dispatch(ctx context.Context, in Intent) (AuthViewState, error) {
	switch in := in.(type) {
	case SwitchMode:
		return c.switchMode()
	case ChangeLanguage:
		return c.changeLanguage(in.Code)
	case SubmitSetup:
		return c.submitSetup(ctx, in.Input)
	case SubmitLogin:
		return c.submitLogin(ctx, in.Input)
	case SubmitProviderLogin:
		return c.submitProviderLogin(ctx, in.Provider)
	case Logout:
		return c.endSession(in, nil)
	case InvalidateSession:
		return c.endSession(in, keyMessage("sessionExpired"))
	case nil:
		return c.CurrentState(), fmt.Errorf("%w: nil", ErrUnknownIntent)
	default:
		return c.CurrentState(), fmt.Errorf("%w: %T", ErrUnknownIntent, in)
	}
}

// =============================================================================
// STATE PLUMBING
// =============================================================================

// commit must be called with mu held. It returns the snapshot to publish.
func (c *Controller) commit() (AuthViewState, uint64) {
	c.version++
	c.state.Pending = c.state.Phase == PhaseSubmitting
	return c.state.clone(), c.version
}

// publish delivers a committed snapshot unless a newer one already went out.
// While one goroutine is delivering, later snapshots are queued for it, so a
// subscriber may Dispatch without blocking on its own notification.
func (c *Controller) publish(s AuthViewState, version uint64) {
	c.notifyMu.Lock()
	c.queue = append(c.queue, notice{state: s, version: version})
	if c.delivering {
		c.notifyMu.Unlock()
		return
	}
	c.delivering = true

	for {
		if len(c.queue) == 0 {
			c.delivering = false
			c.notifyMu.Unlock()
			return
		}
		n := c.queue[0]
		c.queue = c.queue[1:]
		if n.version <= c.delivered {
			continue
		}
		c.delivered = n.version
		c.notifyMu.Unlock()

		for _, sub := range c.subscribers() {
			sub.fn(n.state.clone())
		}

		c.notifyMu.Lock()
	}
}

func (c *Controller) subscribers() []subscriber {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	return subs
}

// reject logs a refused intent and returns the unchanged state. mu must be held.
func (c *Controller) reject(in Intent, err error) (AuthViewState, error) {
	c.log.Debug("AUTH_REJECTED",
		zap.String("intent", in.intentName()),
		zap.String("phase", c.state.Phase.String()),
		zap.Error(err))
	return c.state.clone(), err
}

// guardIdle checks that a form intent may run. mu must be held.
func (c *Controller) guardIdle(mode *Mode) error {
	switch c.state.Phase {
	case PhaseSubmitting:
		return ErrBusy
	case PhaseAuthenticated:
		return ErrNotAllowed
	}
	if mode != nil && c.state.Mode != *mode {
		return ErrNotAllowed
	}
	return nil
}

// =============================================================================
// NON-SUBMITTING INTENTS
// =============================================================================

func (c *Controller) switchMode() (AuthViewState, error) {
	in := SwitchMode{}

	c.mu.Lock()
	if err := c.guardIdle(nil); err != nil {
		defer c.mu.Unlock()
		return c.reject(in, err)
	}
	c.state.Mode = c.state.Mode.Toggle()
	c.state.LastError = nil
	c.state.LastSuccess = nil
	c.state.FieldErrors = validation.Result{}
	s, v := c.commit()
	c.mu.Unlock()

	c.publish(s, v)
	return s, nil
}

func (c *Controller) changeLanguage(code string) (AuthViewState, error) {
	c.mu.Lock()
	c.state.Language = c.canonical(code)
	s, v := c.commit()
	c.mu.Unlock()

	c.log.Debug("LANGUAGE_CHANGED", zap.String("language", s.Language))
	c.publish(s, v)
	return s, nil
}

// endSession handles Logout and InvalidateSession.
func (c *Controller) endSession(in Intent, lastError *Message) (AuthViewState, error) {
	c.mu.Lock()
	switch c.state.Phase {
	case PhaseSubmitting:
		defer c.mu.Unlock()
		return c.reject(in, ErrBusy)
	case PhaseIdle:
		defer c.mu.Unlock()
		return c.reject(in, ErrNotAllowed)
	}

	email := ""
	if c.state.Identity != nil {
		email = c.state.Identity.Email
	}

	c.state.Phase = PhaseIdle
	c.state.Mode = ModeReturningCustomer
	c.state.Identity = nil
	c.state.LastSuccess = nil
	c.state.LastError = lastError
	c.state.FieldErrors = validation.Result{}

	if err := c.store.Clear(); err != nil {
		c.log.Error("SESSION_CLEAR_FAILED", zap.Error(err))
		if c.state.LastError == nil {
			c.state.LastError = keyMessage("generalError")
		}
	}
	s, v := c.commit()
	c.mu.Unlock()

	c.log.Info("AUTH_"+eventName(in), zap.String("email", logging.MaskEmail(email)))
	c.publish(s, v)
	return s, nil
}

func eventName(in Intent) string {
	switch in.(type) {
	case InvalidateSession:
		return "SESSION_INVALIDATED"
	default:
		return "LOGOUT"
	}
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

func (c *Controller) submitSetup(ctx context.Context, input auth.SetupInput) (AuthViewState, error) {
	in := SubmitSetup{Input: input}
	mode := ModeNewCustomer

	s, started, err := c.begin(in, &mode, func() validation.Result {
		return validation.ValidateSetup(input)
	})
	if !started {
		return s, err
	}

	attempt := c.attemptLogger(in, input.Email)
	res, callErr := c.backend.SetupCustomer(ctx, input)

	return c.finish(func() {
		if callErr != nil {
			c.failLocked(attempt, callErr, "")
			return
		}
		c.state.Mode = ModeNewCustomer
		if res.Message != "" {
			c.state.LastSuccess = &Message{Literal: res.Message}
		} else {
			c.state.LastSuccess = keyMessage("accountSetupSuccess")
		}
		attempt.Info("AUTH_SETUP_OK")
	})
}

func (c *Controller) submitLogin(ctx context.Context, input auth.LoginInput) (AuthViewState, error) {
	in := SubmitLogin{Input: input}
	mode := ModeReturningCustomer

	s, started, err := c.begin(in, &mode, func() validation.Result {
		return validation.ValidateLogin(input)
	})
	if !started {
		return s, err
	}

	attempt := c.attemptLogger(in, input.Email)
	res, callErr := c.backend.Login(ctx, input)

	var id auth.Identity
	if callErr == nil {
		id = res.Identity(auth.ProviderPassword)
		c.persist(attempt, id)
	}
	return c.finish(func() {
		if callErr != nil {
			c.failLocked(attempt, callErr, "")
			return
		}
		c.authenticateLocked(attempt, id)
	})
}

func (c *Controller) submitProviderLogin(ctx context.Context, p auth.Provider) (AuthViewState, error) {
	in := SubmitProviderLogin{Provider: p}

	c.mu.Lock()
	if err := c.guardIdle(nil); err != nil {
		defer c.mu.Unlock()
		return c.reject(in, err)
	}
	if !p.IsFederated() {
		c.state.LastError = &Message{Key: "unsupportedProvider", Params: map[string]string{"provider": p.String()}}
		c.state.LastSuccess = nil
		c.state.FieldErrors = validation.Result{}
		s, v := c.commit()
		c.mu.Unlock()

		c.log.Warn("AUTH_FAILED",
			zap.String("intent", in.intentName()),
			zap.String("kind", auth.KindUnsupportedProvider.String()),
			zap.String("provider", p.String()))
		c.publish(s, v)
		return s, nil
	}
	c.mu.Unlock()

	s, started, err := c.begin(in, nil, nil)
	if !started {
		return s, err
	}

	attempt := c.attemptLogger(in, "").With(zap.String("provider", p.String()))
	res, callErr := c.backend.LoginWithProvider(ctx, p)

	var id auth.Identity
	if callErr == nil {
		id = res.Identity(p)
		c.persist(attempt, id)
	}
	return c.finish(func() {
		if callErr != nil {
			c.failLocked(attempt, callErr, p)
			return
		}
		c.authenticateLocked(attempt, id)
	})
}

// begin guards and validates a submission, then enters Submitting. When
// started is false the submission ends here and s, err are the result.
func (c *Controller) begin(in Intent, mode *Mode, validate func() validation.Result) (s AuthViewState, started bool, err error) {
	c.mu.Lock()
	if err := c.guardIdle(mode); err != nil {
		defer c.mu.Unlock()
		s, err = c.reject(in, err)
		return s, false, err
	}

	c.state.LastSuccess = nil
	if validate != nil {
		result := validate()
		c.state.FieldErrors = result
		if !result.Valid {
			field, code, _ := result.First()
			c.state.LastError = keyMessage(validation.MessageKey(field, code))
			s, v := c.commit()
			c.mu.Unlock()

			c.log.Debug("AUTH_INVALID_INPUT",
				zap.String("intent", in.intentName()),
				zap.Int("failures", result.Count()),
				zap.String("first_field", field))
			c.publish(s, v)
			return s, false, nil
		}
	} else {
		c.state.FieldErrors = validation.Result{}
	}

	c.state.LastError = nil
	c.state.Phase = PhaseSubmitting
	s, v := c.commit()
	c.mu.Unlock()

	c.publish(s, v)
	return s, true, nil
}

// finish applies the backend outcome and returns to a stable phase.
func (c *Controller) finish(apply func()) (AuthViewState, error) {
	c.mu.Lock()
	c.state.Phase = PhaseIdle
	apply()
	s, v := c.commit()
	c.mu.Unlock()

	c.publish(s, v)
	return s, nil
}

// persist saves id outside the state lock. Only the in-flight submission
// writes to the store, so no other writer can interleave.
func (c *Controller) persist(attempt *zap.Logger, id auth.Identity) {
	if err := c.store.Save(id); err != nil {
		// The login stands; it just will not survive a restart.
		attempt.Error("SESSION_SAVE_FAILED", zap.Error(err))
	}
}

// authenticateLocked enters Authenticated. mu must be held.
func (c *Controller) authenticateLocked(attempt *zap.Logger, id auth.Identity) {
	c.state.Phase = PhaseAuthenticated
	c.state.Identity = &id
	c.state.LastError = nil
	c.state.FieldErrors = validation.Result{}
	attempt.Info("AUTH_OK", zap.String("provider", id.Provider.String()))
}

// failLocked records a backend failure. Phase is already Idle. mu must be held.
// p is the provider of a provider login, empty otherwise.
func (c *Controller) failLocked(attempt *zap.Logger, err error, p auth.Provider) {
	kind := auth.KindOf(err)
	c.state.LastError = errorMessage(err, p)

	fields := []zap.Field{zap.String("kind", kind.String()), zap.Error(err)}
	if kind == auth.KindTransport || kind == auth.KindUnknown {
		attempt.Error("AUTH_FAILED", fields...)
	} else {
		attempt.Warn("AUTH_FAILED", fields...)
	}
}

func (c *Controller) attemptLogger(in Intent, email string) *zap.Logger {
	log := c.log.With(
		zap.String("attempt", uuid.NewString()),
		zap.String("intent", in.intentName()))
	if email != "" {
		log = log.With(zap.String("email", logging.MaskEmail(email)))
	}
	log.Info("AUTH_SUBMIT")
	return log
}

// errorMessage maps a backend failure onto a view message. Classified
// rejections show the backend's message when it sent one; everything else
// falls back to catalog text.
func errorMessage(err error, p auth.Provider) *Message {
	ae := auth.Classify(err)
	switch ae.Kind {
	case auth.KindTransport, auth.KindUnknown, auth.KindValidation:
		return keyMessage("generalError")
	}
	if ae.Message != "" {
		return &Message{Literal: ae.Message}
	}
	switch ae.Kind {
	case auth.KindCredentialConflict:
		return keyMessage("emailTaken")
	case auth.KindInvalidCredentials:
		return keyMessage("invalidCredentials")
	case auth.KindUnsupportedProvider:
		return &Message{Key: "unsupportedProvider", Params: map[string]string{"provider": p.String()}}
	}
	return keyMessage("generalError")
}
