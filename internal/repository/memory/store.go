// Package memory provides map-backed repositories for tests and local
// experiments. Records are copied on the way in and out, so callers never
// share memory with the store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

// Store holds accounts, products and tokens behind one lock so the
// cross-table rules (seller and token owner must exist) hold.
type Store struct {
	mu       sync.RWMutex
	accounts []*domain.Account
	products []*domain.Product
	tokens   []*domain.Token
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() repository.AccountRepository { return (*accountRepository)(s) }

// Products returns the product repository view of the store.
func (s *Store) Products() repository.ProductRepository { return (*productRepository)(s) }

// Tokens returns the token repository view of the store.
func (s *Store) Tokens() repository.TokenRepository { return (*tokenRepository)(s) }

func (s *Store) accountIndex(id uuid.UUID) int {
	for i, a := range s.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) usernameTaken(username string, except uuid.UUID) bool {
	for _, a := range s.accounts {
		if a.Username == username && a.ID != except {
			return true
		}
	}
	return false
}

// =============================================================================
// Accounts
// =============================================================================

type accountRepository Store

func (r *accountRepository) store() *Store { return (*Store)(r) }

func (r *accountRepository) Create(_ context.Context, account *domain.Account) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTaken(account.Username, uuid.Nil) {
		return domain.NewDomainError(domain.ErrAccountAlreadyExists, "username is taken", account.Username)
	}
	c := *account
	s.accounts = append(s.accounts, &c)
	return nil
}

func (r *accountRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.accountIndex(id); i >= 0 {
		c := *s.accounts[i]
		return &c, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *accountRepository) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.Username == username {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *accountRepository) Update(_ context.Context, account *domain.Account) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.accountIndex(account.ID)
	if i < 0 {
		return domain.ErrAccountNotFound
	}
	if s.usernameTaken(account.Username, account.ID) {
		return domain.NewDomainError(domain.ErrAccountAlreadyExists, "username is taken", account.Username)
	}
	c := *account
	c.DateJoined = s.accounts[i].DateJoined
	s.accounts[i] = &c
	return nil
}

func (r *accountRepository) sorted() []*domain.Account {
	s := r.store()
	out := make([]*domain.Account, len(s.accounts))
	for i, a := range s.accounts {
		c := *a
		out[i] = &c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateJoined.Before(out[j].DateJoined)
	})
	return out
}

func (r *accountRepository) List(_ context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Account], error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := r.sorted()
	return &repository.ListResult[domain.Account]{
		Items:  page(all, opts),
		Total:  int64(len(all)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (r *accountRepository) ListNewest(_ context.Context, n int) ([]*domain.Account, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []*domain.Account{}, nil
	}
	all := r.sorted()
	out := make([]*domain.Account, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *accountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usernameTaken(username, uuid.Nil), nil
}

// =============================================================================
// Products
// =============================================================================

type productRepository Store

func (r *productRepository) store() *Store { return (*Store)(r) }

func (r *productRepository) Create(_ context.Context, product *domain.Product) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountIndex(product.SellerID) < 0 {
		return domain.ErrSellerNotFound
	}
	c := *product
	s.products = append(s.products, &c)
	return nil
}

func (r *productRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *productRepository) Update(_ context.Context, product *domain.Product) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID == product.ID {
			p.Description = product.Description
			p.Price = product.Price
			p.Quantity = product.Quantity
			return nil
		}
	}
	return domain.ErrProductNotFound
}

func (r *productRepository) List(_ context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Product], error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Product, len(s.products))
	for i, p := range s.products {
		c := *p
		all[i] = &c
	}
	return &repository.ListResult[domain.Product]{
		Items:  page(all, opts),
		Total:  int64(len(all)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// =============================================================================
// Tokens
// =============================================================================

type tokenRepository Store

func (r *tokenRepository) store() *Store { return (*Store)(r) }

func (r *tokenRepository) Create(_ context.Context, token *domain.Token) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountIndex(token.AccountID) < 0 {
		return domain.ErrAccountNotFound
	}
	for _, t := range s.tokens {
		if t.Key == token.Key || t.AccountID == token.AccountID {
			return domain.ErrTokenAlreadyExists
		}
	}
	c := *token
	s.tokens = append(s.tokens, &c)
	return nil
}

func (r *tokenRepository) find(match func(*domain.Token) bool) (*domain.Token, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if match(t) {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (r *tokenRepository) GetByKey(_ context.Context, key string) (*domain.Token, error) {
	return r.find(func(t *domain.Token) bool { return t.Key == key })
}

func (r *tokenRepository) GetByAccountID(_ context.Context, accountID uuid.UUID) (*domain.Token, error) {
	return r.find(func(t *domain.Token) bool { return t.AccountID == accountID })
}

func (r *tokenRepository) Delete(_ context.Context, key string) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tokens {
		if t.Key == key {
			s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
			return nil
		}
	}
	return domain.ErrTokenNotFound
}

func page[T any](items []*T, opts repository.ListOptions) []*T {
	if opts.Offset >= len(items) {
		return []*T{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

var (
	_ repository.AccountRepository = (*accountRepository)(nil)
	_ repository.ProductRepository = (*productRepository)(nil)
	_ repository.TokenRepository   = (*tokenRepository)(nil)
)
