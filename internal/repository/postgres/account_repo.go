package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

const accountColumns = `id, username, password_hash, first_name, last_name, is_seller, date_joined, is_active, is_superuser`

// accountRepository implements repository.AccountRepository for PostgreSQL.
type accountRepository struct {
	db Querier
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(db *DB) repository.AccountRepository {
	return &accountRepository{db: db.Pool}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.IsSeller,
		&account.DateJoined,
		&account.IsActive,
		&account.IsSuperuser,
	)
	if err != nil {
		return nil, err
	}
	account.DateJoined = account.DateJoined.UTC()
	return account, nil
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.IsSeller,
		account.DateJoined,
		account.IsActive,
		account.IsSuperuser,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDomainError(domain.ErrAccountAlreadyExists, "username is taken", account.Username)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return account, nil
}

// GetByUsername retrieves an account by username.
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by username: %w", err)
	}
	return account, nil
}

// Update updates an existing account. id and date_joined are never written.
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET username = $1, password_hash = $2, first_name = $3, last_name = $4,
		    is_seller = $5, is_active = $6, is_superuser = $7
		WHERE id = $8
	`

	tag, err := r.db.Exec(ctx, query,
		account.Username,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.IsSeller,
		account.IsActive,
		account.IsSuperuser,
		account.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDomainError(domain.ErrAccountAlreadyExists, "username is taken", account.Username)
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// List returns accounts ordered by date joined, oldest first.
func (r *accountRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Account], error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY date_joined, seq LIMIT $1 OFFSET $2`
	accounts, err := r.query(ctx, query, limitArg(opts.Limit), opts.Offset)
	if err != nil {
		return nil, err
	}

	return &repository.ListResult[domain.Account]{
		Items:  accounts,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// ListNewest returns up to n accounts, most recently joined first.
func (r *accountRepository) ListNewest(ctx context.Context, n int) ([]*domain.Account, error) {
	if n <= 0 {
		return []*domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY date_joined DESC, seq DESC LIMIT $1`
	return r.query(ctx, query, n)
}

// ExistsByUsername checks if an account with the given username exists.
func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// Ensure accountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*accountRepository)(nil)
