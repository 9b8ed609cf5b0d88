// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller implements the authentication state machine that sits
// between the views and the backend.
//
// The controller is in one of three phases:
//
//	Idle(mode)        a form is shown; mode is newCustomer or returningCustomer
//	Submitting(mode)  one backend call is in flight
//	Authenticated     an identity is held and persisted
//
// Views send intents through Dispatch and render AuthViewState. Only one
// submission may be in flight; while Submitting, every intent except
// ChangeLanguage is rejected with ErrBusy and leaves the state untouched.
//
// # Key Types
//
//   - Controller: The state machine
//   - AuthViewState: Immutable snapshot handed to views
//   - Intent: SwitchMode, ChangeLanguage, SubmitSetup, SubmitLogin,
//     SubmitProviderLogin, Logout, InvalidateSession
//
// # Usage
//
//	c := controller.New(controller.Options{
//	    Backend:  backend.NewMock(backend.Delays{}, log),
//	    Store:    store,
//	    Language: "en",
//	})
//	unsubscribe := c.Subscribe(func(s controller.AuthViewState) { redraw(s) })
//	defer unsubscribe()
//
//	state, err := c.Dispatch(ctx, controller.SubmitLogin{Input: in})
//	if errors.Is(err, controller.ErrBusy) {
//	    // a submission is already running
//	}
//
// # Concurrency
//
// Transitions are serialized under one mutex that is never held across the
// backend call. Subscribers run after each change, outside that mutex, in
// subscription order and never with a stale snapshot. A subscriber may call
// Dispatch; the resulting notification is delivered after the subscriber
// returns. Notifications raised while another goroutine is delivering are
// handed to that goroutine, so Dispatch can return before its subscribers
// have run.
package controller
