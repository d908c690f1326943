package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/permission"
	"github.com/prn-tf/marketplace/internal/pkg/crypto"
	"github.com/prn-tf/marketplace/internal/repository"
	"github.com/prn-tf/marketplace/internal/serializer"
)

// AccountService handles account registration and management.
type AccountService struct {
	accountRepo repository.AccountRepository
	bcryptCost  int
	logger      zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo repository.AccountRepository, bcryptCost int, logger zerolog.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		bcryptCost:  bcryptCost,
		logger:      logger.With().Str("service", "account").Logger(),
	}
}

// Register creates an account from a registration body.
func (s *AccountService) Register(ctx context.Context, actor *domain.Account, body []byte) (*domain.Account, error) {
	if err := permission.Authorize(actor, permission.ActionRegisterAccount).Err(); err != nil {
		return nil, err
	}

	in, err := serializer.DecodeAccountCreate(body)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, in.Username); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	account := domain.NewAccount(in.Username, hash, in.FirstName, in.LastName, in.IsSeller)
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, s.writeError(err, account.Username, "failed to create account")
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Str("username", account.Username).
		Bool("is_seller", account.IsSeller).
		Strs("discarded", in.Discarded).
		Msg("account registered")

	return account, nil
}

// List returns a page of accounts, oldest first.
func (s *AccountService) List(ctx context.Context, actor *domain.Account, opts repository.ListOptions) (*repository.ListResult[domain.Account], error) {
	if err := permission.Authorize(actor, permission.ActionListAccounts).Err(); err != nil {
		return nil, err
	}

	result, err := s.accountRepo.List(ctx, opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list accounts")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return result, nil
}

// Newest returns the n most recently joined accounts, newest first.
func (s *AccountService) Newest(ctx context.Context, actor *domain.Account, n int) ([]*domain.Account, error) {
	if err := permission.Authorize(actor, permission.ActionNewestAccounts).Err(); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListNewest(ctx, n)
	if err != nil {
		s.logger.Error().Err(err).Int("n", n).Msg("failed to list newest accounts")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return accounts, nil
}

// Get retrieves an account by ID.
func (s *AccountService) Get(ctx context.Context, actor *domain.Account, id uuid.UUID) (*domain.Account, error) {
	if err := permission.Authorize(actor, permission.ActionRetrieveAccount).Err(); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Update applies a self-update body to the actor's own account.
// is_active keeps the actor's current value whatever the body says.
func (s *AccountService) Update(ctx context.Context, actor *domain.Account, id uuid.UUID, body []byte) (*domain.Account, error) {
	if err := permission.Authorize(actor, permission.ActionUpdateAccount).Err(); err != nil {
		return nil, err
	}

	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	target := permission.Target{Account: account}
	if err := permission.AuthorizeObject(actor, permission.ActionUpdateAccount, target).Err(); err != nil {
		return nil, err
	}

	in, err := serializer.DecodeAccountUpdate(body)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != account.Username {
		if err := s.ensureUsernameFree(ctx, *in.Username); err != nil {
			return nil, err
		}
		account.Username = *in.Username
	}
	if in.FirstName != nil {
		account.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		account.LastName = *in.LastName
	}
	if in.Password != nil {
		hash, err := crypto.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to hash password")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		account.PasswordHash = hash
	}
	account.IsActive = actor.IsActive

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, s.writeError(err, account.Username, "failed to update account")
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Bool("password_changed", in.Password != nil).
		Strs("discarded", in.Discarded).
		Msg("account updated")

	return account, nil
}

// Manage applies an activation toggle body. Only is_active changes.
func (s *AccountService) Manage(ctx context.Context, actor *domain.Account, id uuid.UUID, body []byte) (*domain.Account, error) {
	if err := permission.Authorize(actor, permission.ActionManageAccount).Err(); err != nil {
		return nil, err
	}

	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	target := permission.Target{Account: account}
	if err := permission.AuthorizeObject(actor, permission.ActionManageAccount, target).Err(); err != nil {
		return nil, err
	}

	in, err := serializer.DecodeAccountManage(body)
	if err != nil {
		return nil, err
	}

	account.IsActive = in.IsActive
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, s.writeError(err, account.Username, "failed to update account")
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Str("by", actor.Username).
		Bool("is_active", account.IsActive).
		Msg("account activation changed")

	return account, nil
}

// CreateSuperuserInput contains the data needed to create a superuser.
type CreateSuperuserInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// CreateSuperuser creates an active superuser. It is used by the admin tool
// and is not reachable over HTTP.
func (s *AccountService) CreateSuperuser(ctx context.Context, input CreateSuperuserInput) (*domain.Account, error) {
	errs := domain.NewValidationError()
	for _, msg := range domain.ValidateUsername(input.Username) {
		errs.Add("username", msg)
	}
	for _, msg := range domain.ValidatePassword(input.Password) {
		errs.Add("password", msg)
	}
	for _, msg := range domain.ValidateName(input.FirstName) {
		errs.Add("first_name", msg)
	}
	for _, msg := range domain.ValidateName(input.LastName) {
		errs.Add("last_name", msg)
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, input.Username); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	account := domain.NewAccount(input.Username, hash, input.FirstName, input.LastName, false)
	account.IsSuperuser = true
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, s.writeError(err, account.Username, "failed to create superuser")
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Str("username", account.Username).
		Msg("superuser created")

	return account, nil
}

func (s *AccountService) load(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		s.logger.Error().Err(err).Str("account_id", id.String()).Msg("failed to get account")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return account, nil
}

func (s *AccountService) ensureUsernameFree(ctx context.Context, username string) error {
	exists, err := s.accountRepo.ExistsByUsername(ctx, username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to check username existence")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return domain.FieldError("username", domain.MsgUsernameTaken)
	}
	return nil
}

// writeError maps a store failure. A unique violation that slipped past the
// pre-check becomes the same field error.
func (s *AccountService) writeError(err error, username, msg string) error {
	if errors.Is(err, domain.ErrAccountAlreadyExists) {
		return domain.FieldError("username", domain.MsgUsernameTaken)
	}
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.ErrAccountNotFound
	}
	s.logger.Error().Err(err).Str("username", username).Msg(msg)
	return fmt.Errorf("%w: %v", ErrInternalError, err)
}
