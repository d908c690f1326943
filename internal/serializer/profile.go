// Package serializer converts between HTTP JSON bodies and domain entities.
// Field visibility is governed by profiles selected by operation kind, never
// by the role of the caller.
package serializer

// Operation identifies the endpoint operation a body is read or written for.
type Operation int

const (
	AccountCreate Operation = iota + 1
	AccountRetrieve
	AccountUpdate
	AccountManage
	ProductCreate
	ProductRetrieve
	ProductUpdate
	ProductList
	Login
)

// Profile lists which fields an operation reads from input and which it
// renders on output. Input fields outside Writable are discarded.
type Profile struct {
	Name string

	// Writable fields are read from the request body.
	Writable []string

	// Required fields must be present when the write is not partial.
	Required []string

	// Output fields are rendered in the response, in order.
	Output []string
}

var accountOutput = []string{
	"id", "username", "first_name", "last_name", "is_seller",
	"date_joined", "is_active", "is_superuser",
}

var profiles = map[Operation]Profile{
	AccountCreate: {
		Name:     "account",
		Writable: []string{"username", "password", "first_name", "last_name", "is_seller"},
		Required: []string{"username", "password", "first_name", "last_name"},
		Output:   accountOutput,
	},
	AccountRetrieve: {
		Name:   "account",
		Output: accountOutput,
	},
	AccountUpdate: {
		Name:     "account_self_update",
		Writable: []string{"username", "password", "first_name", "last_name"},
		Output:   accountOutput,
	},
	AccountManage: {
		Name:     "account_admin",
		Writable: []string{"is_active"},
		Required: []string{"is_active"},
		Output: []string{
			"username", "first_name", "last_name", "is_seller",
			"date_joined", "is_active", "is_superuser",
		},
	},
	ProductCreate: {
		Name:     "product_detailed",
		Writable: []string{"description", "price", "quantity"},
		Required: []string{"description", "price", "quantity"},
		Output:   []string{"id", "description", "price", "quantity", "is_active", "seller"},
	},
	ProductRetrieve: {
		Name:   "product_detailed",
		Output: []string{"id", "description", "price", "quantity", "is_active", "seller"},
	},
	ProductUpdate: {
		Name:     "product_detailed",
		Writable: []string{"description", "price", "quantity"},
		Output:   []string{"id", "description", "price", "quantity", "is_active", "seller"},
	},
	ProductList: {
		Name:   "product_generic",
		Output: []string{"description", "price", "quantity", "is_active", "seller_id"},
	},
	Login: {
		Name:     "login",
		Writable: []string{"username", "password"},
		Required: []string{"username", "password"},
		Output:   []string{"token"},
	},
}

// ProfileFor returns the profile of an operation.
func ProfileFor(op Operation) (Profile, bool) {
	p, ok := profiles[op]
	return p, ok
}

// IsWritable reports whether the profile reads field from input.
func (p Profile) IsWritable(field string) bool {
	for _, f := range p.Writable {
		if f == field {
			return true
		}
	}
	return false
}

// IsRequired reports whether field must be supplied on a full write.
func (p Profile) IsRequired(field string) bool {
	for _, f := range p.Required {
		if f == field {
			return true
		}
	}
	return false
}
