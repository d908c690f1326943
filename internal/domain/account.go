// Package domain contains the core business entities for the marketplace.
// These are pure Go structs with no infrastructure dependencies, representing
// the accounts that sign in and the products sellers list.
package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Account field limits.
const (
	UsernameMaxLength = 150
	NameMaxLength     = 50

	// PasswordMaxBytes is the longest input bcrypt accepts.
	PasswordMaxBytes = 72
)

// Account represents a registered marketplace user.
// Sellers own products; superusers manage account activation.
type Account struct {
	// ID is the unique identifier for the account (system generated, immutable).
	ID uuid.UUID

	// Username is the unique login name.
	// Constraints: 1-150 characters, letters, digits and @/./+/-/_ only.
	Username string

	// PasswordHash is the bcrypt hash of the account's password.
	// This must never be exposed in API responses.
	PasswordHash string

	// FirstName is at most 50 characters.
	FirstName string

	// LastName is at most 50 characters.
	LastName string

	// IsSeller permits the account to list and manage products.
	// It is fixed at registration.
	IsSeller bool

	// DateJoined is set once when the account is registered.
	DateJoined time.Time

	// IsActive indicates whether the account may authenticate.
	// Only a superuser can change it.
	IsActive bool

	// IsSuperuser grants access to the account management path.
	IsSuperuser bool
}

// NewAccount creates a new Account with default values and a fresh ID.
func NewAccount(username, passwordHash, firstName, lastName string, isSeller bool) *Account {
	return &Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsSeller:     isSeller,
		DateJoined:   time.Now().UTC(),
		IsActive:     true,
		IsSuperuser:  false,
	}
}

// CanAuthenticate returns true if the account is allowed to authenticate.
func (a *Account) CanAuthenticate() bool {
	return a.IsActive
}

// Is reports whether a and other refer to the same stored account.
func (a *Account) Is(other *Account) bool {
	if a == nil || other == nil {
		return false
	}
	return a.ID == other.ID
}

// Validate checks the account's field constraints and returns a
// *ValidationError describing every violated field, or nil.
func (a *Account) Validate() error {
	errs := NewValidationError()
	for _, msg := range ValidateUsername(a.Username) {
		errs.Add("username", msg)
	}
	for _, msg := range ValidateName(a.FirstName) {
		errs.Add("first_name", msg)
	}
	for _, msg := range ValidateName(a.LastName) {
		errs.Add("last_name", msg)
	}
	return errs.OrNil()
}

// ValidateUsername returns the violations for a username value.
func ValidateUsername(username string) []string {
	if username == "" {
		return []string{MsgBlank}
	}
	var msgs []string
	if len([]rune(username)) > UsernameMaxLength {
		msgs = append(msgs, MaxLengthMessage(UsernameMaxLength))
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			msgs = append(msgs, MsgInvalidUsername)
			break
		}
	}
	return msgs
}

// ValidateName returns the violations for a first or last name value.
func ValidateName(name string) []string {
	if name == "" {
		return []string{MsgBlank}
	}
	if len([]rune(name)) > NameMaxLength {
		return []string{MaxLengthMessage(NameMaxLength)}
	}
	return nil
}

// ValidatePassword returns the violations for a plaintext password.
func ValidatePassword(password string) []string {
	if strings.TrimSpace(password) == "" {
		return []string{MsgBlank}
	}
	if len(password) > PasswordMaxBytes {
		return []string{MaxLengthMessage(PasswordMaxBytes)}
	}
	return nil
}

func isUsernameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune("@.+-_", r)
}
