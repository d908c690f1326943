package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

// tokenRepository implements repository.TokenRepository for SQLite.
type tokenRepository struct {
	db *DB
}

// NewTokenRepository creates a new SQLite token repository.
func NewTokenRepository(db *DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func scanToken(row rowScanner) (*domain.Token, error) {
	token := &domain.Token{}
	var accountID, createdAt string
	if err := row.Scan(&token.Key, &accountID, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if token.AccountID, err = uuid.Parse(accountID); err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", accountID, err)
	}
	token.CreatedAt = parseTime(createdAt)
	return token, nil
}

// Create stores a new token.
func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (token_key, account_id, created_at) VALUES (?, ?, ?)`,
		token.Key,
		token.AccountID.String(),
		formatTime(token.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTokenAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetByKey retrieves a token by its key.
func (r *tokenRepository) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	token, err := scanToken(r.db.QueryRowContext(ctx,
		`SELECT token_key, account_id, created_at FROM tokens WHERE token_key = ?`, key))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return token, nil
}

// GetByAccountID retrieves the token of an account.
func (r *tokenRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Token, error) {
	token, err := scanToken(r.db.QueryRowContext(ctx,
		`SELECT token_key, account_id, created_at FROM tokens WHERE account_id = ?`, accountID.String()))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token by account: %w", err)
	}
	return token, nil
}

// Delete removes a token by key.
func (r *tokenRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE token_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// Ensure tokenRepository implements repository.TokenRepository.
var _ repository.TokenRepository = (*tokenRepository)(nil)
