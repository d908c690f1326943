package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenKeyLength is the length of a token key in hex characters.
const TokenKeyLength = 40

// Token is the opaque credential an account presents as "Authorization: Token <key>".
// An account holds at most one token.
type Token struct {
	// Key is the 40 character lowercase hex credential.
	Key string

	// AccountID identifies the owner.
	AccountID uuid.UUID

	// CreatedAt is when the token was issued.
	CreatedAt time.Time
}

// NewToken creates a token for the account.
func NewToken(key string, accountID uuid.UUID) *Token {
	return &Token{
		Key:       key,
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
	}
}

// IsExpired reports whether the token is older than ttl.
// A zero ttl means tokens never expire.
func (t *Token) IsExpired(ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Now().After(t.CreatedAt.Add(ttl))
}

// IsWellFormedTokenKey reports whether key looks like a token key.
func IsWellFormedTokenKey(key string) bool {
	if len(key) != TokenKeyLength {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
