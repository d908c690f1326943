// Package service provides business logic services for the marketplace.
// Every mutating operation runs its checks in the same order: actor-level
// permission, target lookup, object-level permission, body validation and
// finally the write.
package service

import "errors"

// Common service errors.
var (
	// ErrInvalidCredentials indicates a login with unknown username, wrong
	// password or a disabled account. The cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInternalError wraps infrastructure failures.
	ErrInternalError = errors.New("internal server error")
)
