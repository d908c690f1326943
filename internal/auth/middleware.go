package auth

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// ErrorWriter renders an infrastructure failure raised while authenticating.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware attaches an AuthContext to every request. Requests without
// usable credentials continue as anonymous.
func Middleware(authn *Authenticator, onError ErrorWriter, observe func(AuthType)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := &AuthContext{AuthType: AuthTypeAnonymous}

			header := r.Header.Get(AuthorizationHeader)
			account, err := authn.Authenticate(r.Context(), header)
			switch {
			case err == nil:
				authCtx.Account = account
				authCtx.AuthType = AuthTypeToken
				hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str("actor", account.Username)
				})
			case IsAnonymous(err):
				if header != "" {
					hlog.FromRequest(r).Debug().Err(err).Str("path", r.URL.Path).Msg("credentials ignored, continuing as anonymous")
				}
			default:
				hlog.FromRequest(r).Error().Err(err).Msg("authentication failed")
				onError(w, r, err)
				return
			}

			if observe != nil {
				observe(authCtx.AuthType)
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}
