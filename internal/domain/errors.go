// Package domain contains the core business entities for the marketplace.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// Account Errors
	// ===========================================

	// ErrAccountNotFound indicates the requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists indicates an account with the same username exists.
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrAccountInactive indicates the account is disabled.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Product Errors
	// ===========================================

	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrSellerNotFound indicates the product references a missing account.
	ErrSellerNotFound = errors.New("seller not found")

	// ===========================================
	// Token Errors
	// ===========================================

	// ErrTokenNotFound indicates no token matches the given key or account.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired indicates the token is older than the configured TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenAlreadyExists indicates the account already holds a token.
	ErrTokenAlreadyExists = errors.New("token already exists")
)

// Field validation messages. They are part of the public API and are
// returned verbatim in 400 responses.
const (
	MsgRequired        = "This field is required."
	MsgBlank           = "This field may not be blank."
	MsgNull            = "This field may not be null."
	MsgInvalidBoolean  = "Must be a valid boolean."
	MsgInvalidString   = "Not a valid string."
	MsgInvalidInteger  = "A valid integer is required."
	MsgInvalidNumber   = "A valid number is required."
	MsgUsernameTaken   = "user with this username already exists."
	MsgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgBadCredentials  = "Unable to log in with provided credentials."
)

// NonFieldErrorsKey is the key used for errors not bound to a single field.
const NonFieldErrorsKey = "non_field_errors"

// MaxLengthMessage returns the message for a string longer than max.
func MaxLengthMessage(max int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", max)
}

// MinValueMessage returns the message for a number below min.
func MinValueMessage(min int64) string {
	return fmt.Sprintf("Ensure this value is greater than or equal to %d.", min)
}

// MaxValueMessage returns the message for a number above max.
func MaxValueMessage(max int64) string {
	return fmt.Sprintf("Ensure this value is less than or equal to %d.", max)
}

// ValidationError collects per-field validation messages.
// A request failing validation never reaches the store.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError creates a ValidationError holding a single message.
func FieldError(field, msg string) *ValidationError {
	e := NewValidationError()
	e.Add(field, msg)
	return e
}

// Add appends a message to a field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge copies every message of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		e.Fields[field] = append(e.Fields[field], msgs...)
	}
}

// Has reports whether the field has at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty reports whether no message has been recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e as an error, or nil when it holds no messages.
// Returning a typed nil pointer as error would make err != nil.
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., account id, username).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}
