// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind classifies an authentication failure.
type ErrorKind int

const (
	// KindUnknown is an unclassified failure; shown with the generic fallback message.
	KindUnknown ErrorKind = iota
	// KindValidation is a local input failure; it never reaches the backend.
	KindValidation
	// KindCredentialConflict means the backend rejected the credentials as taken.
	KindCredentialConflict
	// KindInvalidCredentials means the backend rejected a login.
	KindInvalidCredentials
	// KindUnsupportedProvider means a provider outside google/facebook/apple was requested.
	KindUnsupportedProvider
	// KindTransport covers network failures, timeouts and server errors.
	KindTransport
)

// String returns the taxonomy name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindCredentialConflict:
		return "CredentialConflict"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindUnsupportedProvider:
		return "UnsupportedProvider"
	case KindTransport:
		return "TransportError"
	default:
		return "Unknown"
	}
}

// Error is a classified authentication failure.
// Message is user-facing text supplied by the backend; it may be empty.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind. A target with a message only
// matches errors carrying that exact message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinel errors for errors.Is checks.
var (
	ErrCredentialConflict  = &Error{Kind: KindCredentialConflict}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials}
	ErrUnsupportedProvider = &Error{Kind: KindUnsupportedProvider}
	ErrTransport           = &Error{Kind: KindTransport}
)

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewCredentialConflict reports credentials that are already in use.
func NewCredentialConflict(msg string) *Error {
	return &Error{Kind: KindCredentialConflict, Message: msg}
}

// NewInvalidCredentials reports a rejected login.
func NewInvalidCredentials(msg string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: msg}
}

// NewUnsupportedProvider reports a provider outside the supported set.
func NewUnsupportedProvider(name string) *Error {
	return &Error{Kind: KindUnsupportedProvider, Message: fmt.Sprintf("Unsupported provider: %s", name)}
}

// NewTransport wraps a network or server failure.
func NewTransport(msg string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: msg, Cause: cause}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// KindOf classifies any error returned by a Backend.
// Context deadlines and net.Error values count as transport failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransport
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return KindTransport
	}
	return KindUnknown
}

// Classify returns err as an *Error, wrapping unclassified errors.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindOf(err), Cause: err}
}
