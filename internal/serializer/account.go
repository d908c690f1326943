package serializer

import (
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/marketplace/internal/domain"
)

// AccountCreateInput is a validated registration body.
type AccountCreateInput struct {
	Meta
	Username  string
	Password  string
	FirstName string
	LastName  string
	IsSeller  bool
}

// DecodeAccountCreate reads a registration body. Username uniqueness is not
// checked here.
func DecodeAccountCreate(body []byte) (*AccountCreateInput, error) {
	p, err := decode(AccountCreate, body, false)
	if err != nil {
		return nil, err
	}

	in := &AccountCreateInput{Meta: p.meta}
	if v, ok := p.String("username", true); ok {
		in.Username = v
		p.addAll("username", domain.ValidateUsername(v))
	}
	if v, ok := p.String("password", false); ok {
		in.Password = v
		p.addAll("password", domain.ValidatePassword(v))
	}
	if v, ok := p.String("first_name", true); ok {
		in.FirstName = v
		p.addAll("first_name", domain.ValidateName(v))
	}
	if v, ok := p.String("last_name", true); ok {
		in.LastName = v
		p.addAll("last_name", domain.ValidateName(v))
	}
	if v, ok := p.Bool("is_seller"); ok {
		in.IsSeller = v
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return in, nil
}

// AccountUpdateInput is a validated partial self-update body. Nil fields
// were not supplied.
type AccountUpdateInput struct {
	Meta
	Username  *string
	Password  *string
	FirstName *string
	LastName  *string
}

// DecodeAccountUpdate reads a self-update body.
func DecodeAccountUpdate(body []byte) (*AccountUpdateInput, error) {
	p, err := decode(AccountUpdate, body, true)
	if err != nil {
		return nil, err
	}

	in := &AccountUpdateInput{Meta: p.meta}
	if v, ok := p.String("username", true); ok {
		in.Username = &v
		p.addAll("username", domain.ValidateUsername(v))
	}
	if v, ok := p.String("password", false); ok {
		in.Password = &v
		p.addAll("password", domain.ValidatePassword(v))
	}
	if v, ok := p.String("first_name", true); ok {
		in.FirstName = &v
		p.addAll("first_name", domain.ValidateName(v))
	}
	if v, ok := p.String("last_name", true); ok {
		in.LastName = &v
		p.addAll("last_name", domain.ValidateName(v))
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return in, nil
}

// AccountManageInput is a validated activation toggle body.
type AccountManageInput struct {
	Meta
	IsActive bool
}

// DecodeAccountManage reads an activation toggle body. is_active is required.
func DecodeAccountManage(body []byte) (*AccountManageInput, error) {
	p, err := decode(AccountManage, body, false)
	if err != nil {
		return nil, err
	}

	in := &AccountManageInput{Meta: p.meta}
	if v, ok := p.Bool("is_active"); ok {
		in.IsActive = v
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return in, nil
}

// AccountView is the account representation of the creation profile.
// The credential is never part of it.
type AccountView struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsSeller    bool      `json:"is_seller"`
	DateJoined  time.Time `json:"date_joined"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
}

// AccountAdminView is the account representation of the admin profile.
type AccountAdminView struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsSeller    bool      `json:"is_seller"`
	DateJoined  time.Time `json:"date_joined"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
}

// NewAccountView renders an account with the creation profile.
func NewAccountView(a *domain.Account) AccountView {
	return AccountView{
		ID:          a.ID,
		Username:    a.Username,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		IsSeller:    a.IsSeller,
		DateJoined:  a.DateJoined,
		IsActive:    a.IsActive,
		IsSuperuser: a.IsSuperuser,
	}
}

// NewAccountViews renders a list of accounts with the creation profile.
func NewAccountViews(accounts []*domain.Account) []AccountView {
	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, NewAccountView(a))
	}
	return views
}

// Account renders an account with the output profile of op.
func Account(op Operation, a *domain.Account) any {
	if op == AccountManage {
		return AccountAdminView{
			Username:    a.Username,
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			IsSeller:    a.IsSeller,
			DateJoined:  a.DateJoined,
			IsActive:    a.IsActive,
			IsSuperuser: a.IsSuperuser,
		}
	}
	return NewAccountView(a)
}
