// Package repository defines data access interfaces for the marketplace.
// These interfaces abstract database operations, allowing for different implementations
// (SQLite, PostgreSQL, in-memory for testing) while keeping the service layer clean.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/prn-tf/marketplace/internal/domain"
)

// =============================================================================
// Account Repository
// =============================================================================

// AccountRepository defines the interface for account data access.
type AccountRepository interface {
	// Create creates a new account.
	// Returns domain.ErrAccountAlreadyExists if the username is taken.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByUsername retrieves an account by username.
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)

	// Update updates an existing account.
	// Returns domain.ErrAccountAlreadyExists if the new username is taken.
	Update(ctx context.Context, account *domain.Account) error

	// List returns accounts ordered by date joined, oldest first.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.Account], error)

	// ListNewest returns up to n accounts, most recently joined first.
	ListNewest(ctx context.Context, n int) ([]*domain.Account, error)

	// ExistsByUsername checks if an account with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// =============================================================================
// Product Repository
// =============================================================================

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Create creates a new product.
	// Returns domain.ErrSellerNotFound if the seller does not exist.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// Update updates description, price and quantity of an existing product.
	// The seller is never changed.
	Update(ctx context.Context, product *domain.Product) error

	// List returns products in insertion order.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.Product], error)
}

// =============================================================================
// Token Repository
// =============================================================================

// TokenRepository defines the interface for authentication token data access.
type TokenRepository interface {
	// Create stores a new token.
	// Returns domain.ErrTokenAlreadyExists if the account already holds one.
	Create(ctx context.Context, token *domain.Token) error

	// GetByKey retrieves a token by its key.
	GetByKey(ctx context.Context, key string) (*domain.Token, error)

	// GetByAccountID retrieves the token of an account.
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Token, error)

	// Delete removes a token by key.
	Delete(ctx context.Context, key string) error
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common options for list operations.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	// Zero means no limit.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}

// =============================================================================
// Transaction Support
// =============================================================================

// TxManager defines the interface for transaction management.
type TxManager interface {
	// WithTx executes the given function within a transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}
