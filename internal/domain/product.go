package domain

import (
	"math"

	"github.com/google/uuid"
)

// Product quantity bounds.
const (
	QuantityMin int64 = 0
	QuantityMax int64 = math.MaxInt32
)

// Product represents an item listed by a seller.
type Product struct {
	// ID is the unique identifier for the product.
	ID uuid.UUID

	// Description is free text and must not be blank.
	Description string

	// Price is a fixed-point amount with two fractional digits.
	Price Price

	// Quantity is the number of units in stock, never negative.
	Quantity int64

	// IsActive is not writable through the public API.
	IsActive bool

	// SellerID references the owning account. It is set at creation
	// from the creating actor and never changed afterwards.
	SellerID uuid.UUID
}

// NewProduct creates a new active Product owned by sellerID.
func NewProduct(description string, price Price, quantity int64, sellerID uuid.UUID) *Product {
	return &Product{
		ID:          uuid.New(),
		Description: description,
		Price:       price,
		Quantity:    quantity,
		IsActive:    true,
		SellerID:    sellerID,
	}
}

// IsOwnedBy reports whether the account is the product's seller.
func (p *Product) IsOwnedBy(account *Account) bool {
	if p == nil || account == nil {
		return false
	}
	return p.SellerID == account.ID
}

// Validate checks the product's field constraints.
func (p *Product) Validate() error {
	errs := NewValidationError()
	if p.Description == "" {
		errs.Add("description", MsgBlank)
	}
	for _, msg := range ValidateQuantity(p.Quantity) {
		errs.Add("quantity", msg)
	}
	return errs.OrNil()
}

// ValidateQuantity returns the violations for a quantity value.
func ValidateQuantity(q int64) []string {
	if q < QuantityMin {
		return []string{MinValueMessage(QuantityMin)}
	}
	if q > QuantityMax {
		return []string{MaxValueMessage(QuantityMax)}
	}
	return nil
}
