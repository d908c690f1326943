package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const accountColumns = `id, username, password_hash, first_name, last_name, is_seller, date_joined, is_active, is_superuser`

// accountRepository implements repository.AccountRepository for SQLite.
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(db *DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	account := &domain.Account{}
	var id, dateJoined string
	var isSeller, isActive, isSuperuser int

	err := row.Scan(
		&id,
		&account.Username,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&isSeller,
		&dateJoined,
		&isActive,
		&isSuperuser,
	)
	if err != nil {
		return nil, err
	}

	account.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", id, err)
	}
	account.IsSeller = isSeller != 0
	account.IsActive = isActive != 0
	account.IsSuperuser = isSuperuser != 0
	account.DateJoined = parseTime(dateJoined)
	return account, nil
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID.String(),
		account.Username,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		boolToInt(account.IsSeller),
		formatTime(account.DateJoined),
		boolToInt(account.IsActive),
		boolToInt(account.IsSuperuser),
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
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id.String()))
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
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, username))
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
		SET username = ?, password_hash = ?, first_name = ?, last_name = ?,
		    is_seller = ?, is_active = ?, is_superuser = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		account.Username,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		boolToInt(account.IsSeller),
		boolToInt(account.IsActive),
		boolToInt(account.IsSuperuser),
		account.ID.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDomainError(domain.ErrAccountAlreadyExists, "username is taken", account.Username)
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// List returns accounts ordered by date joined, oldest first.
func (r *accountRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Account], error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY date_joined, rowid LIMIT ? OFFSET ?`
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
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY date_joined DESC, rowid DESC LIMIT ?`
	return r.query(ctx, query, n)
}

// ExistsByUsername checks if an account with the given username exists.
func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return count > 0, nil
}

func (r *accountRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

// limitArg maps "no limit" to SQLite's LIMIT -1.
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// Ensure accountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*accountRepository)(nil)
