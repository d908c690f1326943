package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/lock"
	"github.com/prn-tf/marketplace/internal/pkg/crypto"
	"github.com/prn-tf/marketplace/internal/repository"
	"github.com/prn-tf/marketplace/internal/serializer"
)

// TokenEvictor drops cached token records.
type TokenEvictor interface {
	Forget(ctx context.Context, key string)
}

// AuthService exchanges credentials for tokens.
type AuthService struct {
	accountRepo repository.AccountRepository
	tokenRepo   repository.TokenRepository
	evictor     TokenEvictor
	locker      lock.Locker
	tokenTTL    time.Duration
	logger      zerolog.Logger
}

// Token issuance lock settings.
const (
	issueLockTTL     = 5 * time.Second
	issueLockRetries = 50
	issueLockDelay   = 20 * time.Millisecond
)

// NewAuthService creates a new AuthService. evictor may be nil.
func NewAuthService(
	accountRepo repository.AccountRepository,
	tokenRepo repository.TokenRepository,
	evictor TokenEvictor,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		evictor:     evictor,
		locker:      lock.NoOpLocker{},
		tokenTTL:    tokenTTL,
		logger:      logger.With().Str("service", "auth").Logger(),
	}
}

// WithLocker serializes token issuance per account through l.
func (s *AuthService) WithLocker(l lock.Locker) *AuthService {
	if l != nil {
		s.locker = l
	}
	return s
}

// LoginOutput contains the result of a successful login.
type LoginOutput struct {
	Token   *domain.Token
	Account *domain.Account
}

// Login validates a credentials body and returns the account's token,
// issuing one when the account has none or its token has expired.
func (s *AuthService) Login(ctx context.Context, body []byte) (*LoginOutput, error) {
	in, err := serializer.DecodeLogin(body)
	if err != nil {
		return nil, err
	}

	account, err := s.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.issue(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Str("username", account.Username).
		Msg("account logged in")

	return &LoginOutput{Token: token, Account: account}, nil
}

// Authenticate verifies credentials and returns the account.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Debug().Str("username", username).Msg("account not found during authentication")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to get account")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := crypto.CheckPassword(account.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to verify password")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !account.CanAuthenticate() {
		s.logger.Debug().Str("username", username).Msg("inactive account attempted authentication")
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// issue runs tokenFor under the account's issuance lock.
func (s *AuthService) issue(ctx context.Context, account *domain.Account) (*domain.Token, error) {
	key := lock.Keys.TokenIssue(account.ID)
	owner, acquired, err := lock.AcquireWithRetry(ctx, s.locker, key, issueLockTTL, issueLockRetries, issueLockDelay)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID.String()).Msg("failed to acquire token lock")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: token issuance for %s is busy", ErrInternalError, account.ID)
	}
	defer func() {
		if _, err := s.locker.Release(context.WithoutCancel(ctx), key, owner); err != nil {
			s.logger.Warn().Err(err).Str("account_id", account.ID.String()).Msg("failed to release token lock")
		}
	}()

	return s.tokenFor(ctx, account)
}

func (s *AuthService) tokenFor(ctx context.Context, account *domain.Account) (*domain.Token, error) {
	token, err := s.tokenRepo.GetByAccountID(ctx, account.ID)
	switch {
	case err == nil && !token.IsExpired(s.tokenTTL):
		return token, nil
	case err == nil:
		if err := s.tokenRepo.Delete(ctx, token.Key); err != nil && !errors.Is(err, domain.ErrTokenNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if s.evictor != nil {
			s.evictor.Forget(ctx, token.Key)
		}
		s.logger.Debug().Str("account_id", account.ID.String()).Msg("replacing expired token")
	case !errors.Is(err, domain.ErrTokenNotFound):
		s.logger.Error().Err(err).Str("account_id", account.ID.String()).Msg("failed to get token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	key, err := crypto.GenerateTokenKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	token = domain.NewToken(key, account.ID)
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		if errors.Is(err, domain.ErrTokenAlreadyExists) {
			// A concurrent login issued one first.
			existing, getErr := s.tokenRepo.GetByAccountID(ctx, account.ID)
			if getErr == nil {
				return existing, nil
			}
		}
		s.logger.Error().Err(err).Str("account_id", account.ID.String()).Msg("failed to create token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return token, nil
}
