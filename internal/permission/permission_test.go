package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/marketplace/internal/domain"
)

func fixtures() (seller, buyer, admin *domain.Account, product *domain.Product) {
	seller = domain.NewAccount("ale", "x", "Ale", "S", true)
	buyer = domain.NewAccount("deb", "x", "Deb", "B", false)
	admin = domain.NewAccount("root", "x", "Root", "R", false)
	admin.IsSuperuser = true
	product = domain.NewProduct("Mouse", domain.MustParsePrice("99.75"), 13, seller.ID)
	return
}

func TestAuthorize_PublicActions(t *testing.T) {
	seller, buyer, admin, _ := fixtures()
	public := []Action{
		ActionListAccounts, ActionRetrieveAccount, ActionRegisterAccount,
		ActionNewestAccounts, ActionListProducts, ActionRetrieveProduct,
	}

	for _, action := range public {
		for _, actor := range []*domain.Account{nil, seller, buyer, admin} {
			assert.True(t, Authorize(actor, action).Allowed(), "%s by %v", action, actor)
			assert.True(t, AuthorizeObject(actor, action, Target{}).Allowed(), "%s by %v", action, actor)
		}
	}
}

func TestAuthorize_ActorLevel(t *testing.T) {
	seller, buyer, admin, _ := fixtures()

	tests := []struct {
		name   string
		actor  *domain.Account
		action Action
		want   Outcome
	}{
		{"anonymous create product", nil, ActionCreateProduct, Unauthenticated},
		{"buyer create product", buyer, ActionCreateProduct, Forbidden},
		{"seller create product", seller, ActionCreateProduct, Allow},
		{"superuser non-seller create product", admin, ActionCreateProduct, Forbidden},
		{"anonymous update product", nil, ActionUpdateProduct, Unauthenticated},
		{"buyer update product before lookup", buyer, ActionUpdateProduct, Allow},
		{"anonymous update account", nil, ActionUpdateAccount, Unauthenticated},
		{"known update account before lookup", buyer, ActionUpdateAccount, Allow},
		{"anonymous manage", nil, ActionManageAccount, Unauthenticated},
		{"seller manage", seller, ActionManageAccount, Forbidden},
		{"superuser manage", admin, ActionManageAccount, Allow},
		{"unknown action anonymous", nil, ActionUnknown, Unauthenticated},
		{"unknown action known", admin, ActionUnknown, Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.actor, tt.action).Outcome)
		})
	}
}

func TestAuthorizeObject(t *testing.T) {
	seller, buyer, admin, product := fixtures()
	otherSeller := domain.NewAccount("eve", "x", "Eve", "S", true)

	tests := []struct {
		name   string
		actor  *domain.Account
		action Action
		target Target
		want   Outcome
	}{
		{"owner updates product", seller, ActionUpdateProduct, Target{Product: product}, Allow},
		{"other seller updates product", otherSeller, ActionUpdateProduct, Target{Product: product}, Forbidden},
		{"buyer updates product", buyer, ActionUpdateProduct, Target{Product: product}, Forbidden},
		{"superuser updates product", admin, ActionUpdateProduct, Target{Product: product}, Forbidden},
		{"anonymous updates product", nil, ActionUpdateProduct, Target{Product: product}, Unauthenticated},
		{"missing product target", seller, ActionUpdateProduct, Target{}, Forbidden},
		{"self update", buyer, ActionUpdateAccount, Target{Account: buyer}, Allow},
		{"update someone else", buyer, ActionUpdateAccount, Target{Account: seller}, Forbidden},
		{"superuser updates someone else", admin, ActionUpdateAccount, Target{Account: seller}, Forbidden},
		{"anonymous self update", nil, ActionUpdateAccount, Target{Account: buyer}, Unauthenticated},
		{"superuser manages other", admin, ActionManageAccount, Target{Account: seller}, Allow},
		{"superuser manages self", admin, ActionManageAccount, Target{Account: admin}, Allow},
		{"owner manages self", seller, ActionManageAccount, Target{Account: seller}, Forbidden},
		{"manage without target", admin, ActionManageAccount, Target{}, Forbidden},
		{"seller creates product", seller, ActionCreateProduct, Target{}, Allow},
		{"buyer creates product", buyer, ActionCreateProduct, Target{}, Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := AuthorizeObject(tt.actor, tt.action, tt.target)
			assert.Equal(t, tt.want, d.Outcome)
			assert.Equal(t, tt.action, d.Action)
		})
	}
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Decision{Outcome: Allow}.Err())
	assert.ErrorIs(t, Decision{Outcome: Forbidden}.Err(), ErrForbidden)
	assert.ErrorIs(t, Decision{Outcome: Unauthenticated}.Err(), ErrNotAuthenticated)

	var denied *DeniedError
	require.ErrorAs(t, Decision{Outcome: Forbidden, Action: ActionUpdateProduct}.Err(), &denied)
	assert.Equal(t, ActionUpdateProduct, denied.Decision.Action)
	assert.Equal(t, "permission denied: update_product", denied.Error())

	var zero Decision
	assert.False(t, zero.Allowed())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "update_product", ActionUpdateProduct.String())
	assert.Equal(t, "unknown", Action(99).String())
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "forbidden", Forbidden.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
}
