package auth

import (
	"context"

	"github.com/prn-tf/marketplace/internal/domain"
)

// Header names and keywords.
const (
	// AuthorizationHeader carries the credentials.
	AuthorizationHeader = "Authorization"

	// TokenKeyword is the scheme of "Authorization: Token <key>".
	TokenKeyword = "Token"

	// WWWAuthenticateHeader advertises the scheme on 401 responses.
	WWWAuthenticateHeader = "WWW-Authenticate"
)

// AuthType represents how a request was authenticated.
type AuthType int

const (
	// AuthTypeAnonymous indicates no usable credentials.
	AuthTypeAnonymous AuthType = iota

	// AuthTypeToken indicates a valid token.
	AuthTypeToken
)

// String returns the string representation of AuthType.
func (t AuthType) String() string {
	switch t {
	case AuthTypeAnonymous:
		return "Anonymous"
	case AuthTypeToken:
		return "Token"
	default:
		return "Unknown"
	}
}

// AuthContext contains authentication information attached to a request.
// This is set by the auth middleware for every request.
type AuthContext struct {
	// Account is the authenticated actor, nil when anonymous.
	Account *domain.Account

	// AuthType is the type of authentication used.
	AuthType AuthType
}

// authContextKey is the context key for AuthContext.
type authContextKey struct{}

// WithAuthContext returns a copy of ctx carrying authCtx.
func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, authCtx)
}

// GetAuthContext retrieves the AuthContext from a request context.
func GetAuthContext(ctx context.Context) *AuthContext {
	if authCtx, ok := ctx.Value(authContextKey{}).(*AuthContext); ok {
		return authCtx
	}
	return nil
}

// ActorFromContext returns the authenticated account, or nil for anonymous.
func ActorFromContext(ctx context.Context) *domain.Account {
	if authCtx := GetAuthContext(ctx); authCtx != nil {
		return authCtx.Account
	}
	return nil
}
