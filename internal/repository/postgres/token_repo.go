package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

// tokenRepository implements repository.TokenRepository for PostgreSQL.
type tokenRepository struct {
	db Querier
}

// NewTokenRepository creates a new PostgreSQL token repository.
func NewTokenRepository(db *DB) repository.TokenRepository {
	return &tokenRepository{db: db.Pool}
}

func scanToken(row pgx.Row) (*domain.Token, error) {
	token := &domain.Token{}
	if err := row.Scan(&token.Key, &token.AccountID, &token.CreatedAt); err != nil {
		return nil, err
	}
	token.CreatedAt = token.CreatedAt.UTC()
	return token, nil
}

// Create stores a new token.
func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tokens (token_key, account_id, created_at) VALUES ($1, $2, $3)`,
		token.Key, token.AccountID, token.CreatedAt,
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
	token, err := scanToken(r.db.QueryRow(ctx,
		`SELECT token_key, account_id, created_at FROM tokens WHERE token_key = $1`, key))
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
	token, err := scanToken(r.db.QueryRow(ctx,
		`SELECT token_key, account_id, created_at FROM tokens WHERE account_id = $1`, accountID))
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
	tag, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE token_key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// Ensure tokenRepository implements repository.TokenRepository.
var _ repository.TokenRepository = (*tokenRepository)(nil)
