package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

// Config contains token settings for the Authenticator.
type Config struct {
	// TokenTTL is how long a token stays valid. Zero means forever.
	TokenTTL time.Duration

	// CacheTTL bounds how long a token record stays cached.
	CacheTTL time.Duration
}

// Authenticator resolves token keys to accounts.
// Token records are cached; accounts are always read from the store so
// activation and role changes apply on the next request.
type Authenticator struct {
	tokens   repository.TokenRepository
	accounts repository.AccountRepository
	cache    repository.Cache
	keys     repository.CacheKey
	cfg      Config
	logger   zerolog.Logger
}

// NewAuthenticator creates a new Authenticator. cache may be nil.
func NewAuthenticator(
	tokens repository.TokenRepository,
	accounts repository.AccountRepository,
	cache repository.Cache,
	cfg Config,
	logger zerolog.Logger,
) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		accounts: accounts,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.With().Str("component", "authenticator").Logger(),
	}
}

// cachedToken is the cache representation of a token record.
type cachedToken struct {
	AccountID uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticate resolves an Authorization header value to an account.
// Errors for which IsAnonymous is true mean the request is anonymous;
// any other error is an infrastructure failure.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*domain.Account, error) {
	key, err := ParseTokenHeader(header)
	if err != nil {
		return nil, err
	}
	if !domain.IsWellFormedTokenKey(key) {
		return nil, ErrInvalidToken
	}

	token, err := a.lookupToken(ctx, key)
	if err != nil {
		return nil, err
	}

	if token.IsExpired(a.cfg.TokenTTL) {
		a.Forget(ctx, key)
		return nil, ErrTokenExpired
	}

	account, err := a.accounts.GetByID(ctx, token.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			a.Forget(ctx, key)
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load token owner: %w", err)
	}
	if !account.CanAuthenticate() {
		return nil, ErrAccountInactive
	}

	return account, nil
}

// Forget drops a cached token record.
func (a *Authenticator) Forget(ctx context.Context, key string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Delete(ctx, a.keys.Token(key)); err != nil {
		a.logger.Warn().Err(err).Msg("failed to evict token from cache")
	}
}

func (a *Authenticator) lookupToken(ctx context.Context, key string) (*domain.Token, error) {
	if token, ok := a.fromCache(ctx, key); ok {
		return token, nil
	}

	token, err := a.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	a.toCache(ctx, token)
	return token, nil
}

func (a *Authenticator) fromCache(ctx context.Context, key string) (*domain.Token, bool) {
	if a.cache == nil {
		return nil, false
	}

	data, err := a.cache.Get(ctx, a.keys.Token(key))
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			a.logger.Warn().Err(err).Msg("token cache read failed")
		}
		return nil, false
	}

	var rec cachedToken
	if err := json.Unmarshal(data, &rec); err != nil {
		a.logger.Warn().Err(err).Msg("discarding corrupt token cache entry")
		a.Forget(ctx, key)
		return nil, false
	}
	return &domain.Token{Key: key, AccountID: rec.AccountID, CreatedAt: rec.CreatedAt}, true
}

func (a *Authenticator) toCache(ctx context.Context, token *domain.Token) {
	if a.cache == nil {
		return
	}

	data, err := json.Marshal(cachedToken{AccountID: token.AccountID, CreatedAt: token.CreatedAt})
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, a.keys.Token(token.Key), data, a.cfg.CacheTTL); err != nil {
		a.logger.Warn().Err(err).Msg("token cache write failed")
	}
}
