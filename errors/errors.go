// Package errors provides error handling for Trailhead.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel errors forming the service's closed error taxonomy
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Sentinel errors for use across Trailhead.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the kind.
//
// The HTTP boundary maps these to status codes: ErrInvalidRequest -> 400,
// ErrUnauthorized and ErrExpired -> 401, everything else -> 500. ErrNotFound
// on the dataset or version counter is recovered locally (empty dataset,
// version 0) and never reaches the boundary.
var (
	// ErrNotFound indicates the requested blob or resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrUnauthorized indicates the request lacks valid credentials
	ErrUnauthorized = New("unauthorized")

	// ErrExpired indicates a credential that was valid once but has expired
	ErrExpired = New("credential expired")

	// ErrStore indicates a backing-store read or write failure
	ErrStore = New("store failure")

	// ErrConflict indicates an optimistic-concurrency conflict (stale content hash)
	ErrConflict = New("revision conflict")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsUnauthorizedError checks if an error is or wraps ErrUnauthorized or ErrExpired.
// Both kinds answer the same question at the HTTP boundary: the caller may not
// perform the operation with the credential it presented.
func IsUnauthorizedError(err error) bool {
	return err != nil && IsAny(err, ErrUnauthorized, ErrExpired)
}

// IsConflictError checks if an error is or wraps ErrConflict
func IsConflictError(err error) bool {
	return err != nil && Is(err, ErrConflict)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// WrapStore wraps a backing-store failure with context, preserving the kind
func WrapStore(err error, context string) error {
	return Wrap(Wrap(ErrStore, err.Error()), context)
}
