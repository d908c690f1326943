package serializer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/marketplace/internal/domain"
)

// ProductInput is a validated product write body. Nil fields were not
// supplied; on create every field is present.
type ProductInput struct {
	Meta
	Description *string
	Price       *domain.Price
	Quantity    *int64
}

// DecodeProduct reads a product body for ProductCreate (all fields required)
// or ProductUpdate (partial).
func DecodeProduct(op Operation, body []byte) (*ProductInput, error) {
	if op != ProductCreate && op != ProductUpdate {
		return nil, fmt.Errorf("serializer: operation %d does not write products", op)
	}
	p, err := decode(op, body, op == ProductUpdate)
	if err != nil {
		return nil, err
	}

	in := &ProductInput{Meta: p.meta}
	if v, ok := p.String("description", true); ok {
		in.Description = &v
		if v == "" {
			p.errs.Add("description", domain.MsgBlank)
		}
	}
	if v, ok := p.Price("price"); ok {
		in.Price = &v
	}
	if v, ok := p.Int("quantity"); ok {
		in.Quantity = &v
		p.addAll("quantity", domain.ValidateQuantity(v))
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return in, nil
}

// Apply copies the supplied fields onto a product.
func (in *ProductInput) Apply(p *domain.Product) {
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
}

// ProductDetailView is the detailed product representation with the seller
// embedded.
type ProductDetailView struct {
	ID          uuid.UUID   `json:"id"`
	Description string      `json:"description"`
	Price       string      `json:"price"`
	Quantity    int64       `json:"quantity"`
	IsActive    bool        `json:"is_active"`
	Seller      AccountView `json:"seller"`
}

// ProductListView is the generic product representation used in listings.
type ProductListView struct {
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Quantity    int64     `json:"quantity"`
	IsActive    bool      `json:"is_active"`
	SellerID    uuid.UUID `json:"seller_id"`
}

// NewProductDetailView renders a product with its seller.
func NewProductDetailView(p *domain.Product, seller *domain.Account) ProductDetailView {
	return ProductDetailView{
		ID:          p.ID,
		Description: p.Description,
		Price:       p.Price.String(),
		Quantity:    p.Quantity,
		IsActive:    p.IsActive,
		Seller:      NewAccountView(seller),
	}
}

// NewProductListView renders a product with the generic profile.
func NewProductListView(p *domain.Product) ProductListView {
	return ProductListView{
		Description: p.Description,
		Price:       p.Price.String(),
		Quantity:    p.Quantity,
		IsActive:    p.IsActive,
		SellerID:    p.SellerID,
	}
}

// NewProductListViews renders a product listing.
func NewProductListViews(products []*domain.Product) []ProductListView {
	views := make([]ProductListView, 0, len(products))
	for _, p := range products {
		views = append(views, NewProductListView(p))
	}
	return views
}
