// Package auth resolves token credentials on incoming requests to accounts.
package auth

import "errors"

// Reasons a request is treated as anonymous. None of them rejects the
// request on its own; the permission layer decides what anonymous may do.
var (
	// ErrNoCredentials indicates the request carries no token credentials.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidAuthorizationHeader indicates the Authorization header is malformed.
	ErrInvalidAuthorizationHeader = errors.New("invalid authorization header")

	// ErrInvalidToken indicates the token key is unknown.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token is older than the configured TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrAccountInactive indicates the token owner is disabled.
	ErrAccountInactive = errors.New("account is inactive")
)

// IsAnonymous reports whether err only means the request has no usable
// credentials, as opposed to an infrastructure failure.
func IsAnonymous(err error) bool {
	return errors.Is(err, ErrNoCredentials) ||
		errors.Is(err, ErrInvalidAuthorizationHeader) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrAccountInactive)
}
