package serializer

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/marketplace/internal/domain"
)

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func jsonKeys(t *testing.T, v any) []string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func TestDecodeAccountCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields map[string][]string
		check      func(t *testing.T, in *AccountCreateInput)
	}{
		{
			name: "valid seller",
			body: `{"username":"ale","password":"abcd","first_name":"Ale","last_name":"B","is_seller":true}`,
			check: func(t *testing.T, in *AccountCreateInput) {
				assert.Equal(t, "ale", in.Username)
				assert.Equal(t, "abcd", in.Password)
				assert.True(t, in.IsSeller)
				assert.Empty(t, in.Discarded)
			},
		},
		{
			name: "is_seller defaults to false",
			body: `{"username":"deb","password":"abcd","first_name":"Deb","last_name":"C"}`,
			check: func(t *testing.T, in *AccountCreateInput) {
				assert.False(t, in.IsSeller)
			},
		},
		{
			name: "read-only fields are discarded",
			body: `{"username":"x","password":"p","first_name":"a","last_name":"b","is_superuser":true,"is_active":false,"date_joined":"2000-01-01T00:00:00Z","id":"abc"}`,
			check: func(t *testing.T, in *AccountCreateInput) {
				assert.Equal(t, []string{"date_joined", "id", "is_active", "is_superuser"}, in.Discarded)
			},
		},
		{
			name: "missing required fields",
			body: `{}`,
			wantFields: map[string][]string{
				"username":   {domain.MsgRequired},
				"password":   {domain.MsgRequired},
				"first_name": {domain.MsgRequired},
				"last_name":  {domain.MsgRequired},
			},
		},
		{
			name: "empty body is an empty object",
			body: ``,
			wantFields: map[string][]string{
				"username":   {domain.MsgRequired},
				"password":   {domain.MsgRequired},
				"first_name": {domain.MsgRequired},
				"last_name":  {domain.MsgRequired},
			},
		},
		{
			name: "null and wrong types",
			body: `{"username":null,"password":["x"],"first_name":"  ","last_name":"b","is_seller":"maybe"}`,
			wantFields: map[string][]string{
				"username":   {domain.MsgNull},
				"password":   {domain.MsgInvalidString},
				"first_name": {domain.MsgBlank},
				"is_seller":  {domain.MsgInvalidBoolean},
			},
		},
		{
			name: "bad username",
			body: `{"username":"ale smith","password":"p","first_name":"a","last_name":"b"}`,
			wantFields: map[string][]string{
				"username": {domain.MsgInvalidUsername},
			},
		},
		{
			name: "textual boolean",
			body: `{"username":"x","password":"p","first_name":"a","last_name":"b","is_seller":"true"}`,
			check: func(t *testing.T, in *AccountCreateInput) {
				assert.True(t, in.IsSeller)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeAccountCreate([]byte(tt.body))
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, fieldErrors(t, err))
				assert.Nil(t, in)
				return
			}
			require.NoError(t, err)
			tt.check(t, in)
		})
	}
}

func TestDecode_BodyShape(t *testing.T) {
	_, err := DecodeAccountCreate([]byte(`{"username":`))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "JSON parse error - ")

	tests := []struct {
		body string
		want string
	}{
		{`[1,2]`, "Invalid data. Expected a dictionary, but got list."},
		{`"x"`, "Invalid data. Expected a dictionary, but got str."},
		{`12`, "Invalid data. Expected a dictionary, but got int."},
		{`1.5`, "Invalid data. Expected a dictionary, but got float."},
		{`true`, "Invalid data. Expected a dictionary, but got bool."},
		{`null`, "No data provided"},
	}
	for _, tt := range tests {
		_, err := DecodeAccountCreate([]byte(tt.body))
		assert.Equal(t, map[string][]string{domain.NonFieldErrorsKey: {tt.want}}, fieldErrors(t, err), tt.body)
	}
}

func TestDecodeAccountUpdate(t *testing.T) {
	in, err := DecodeAccountUpdate([]byte(`{"first_name":"New","is_active":false,"is_seller":true,"is_superuser":true}`))
	require.NoError(t, err)
	require.NotNil(t, in.FirstName)
	assert.Equal(t, "New", *in.FirstName)
	assert.Nil(t, in.Username)
	assert.Nil(t, in.Password)
	assert.Nil(t, in.LastName)
	assert.Equal(t, []string{"is_active", "is_seller", "is_superuser"}, in.Discarded)

	in, err = DecodeAccountUpdate([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, in.FirstName)

	_, err = DecodeAccountUpdate([]byte(`{"username":""}`))
	assert.Equal(t, map[string][]string{"username": {domain.MsgBlank}}, fieldErrors(t, err))
}

func TestDecodeAccountManage(t *testing.T) {
	in, err := DecodeAccountManage([]byte(`{"is_active":false,"username":"hijack"}`))
	require.NoError(t, err)
	assert.False(t, in.IsActive)
	assert.Equal(t, []string{"username"}, in.Discarded)

	in, err = DecodeAccountManage([]byte(`{"is_active":1}`))
	require.NoError(t, err)
	assert.True(t, in.IsActive)

	_, err = DecodeAccountManage([]byte(`{}`))
	assert.Equal(t, map[string][]string{"is_active": {domain.MsgRequired}}, fieldErrors(t, err))

	_, err = DecodeAccountManage([]byte(`{"is_active":"nope"}`))
	assert.Equal(t, map[string][]string{"is_active": {domain.MsgInvalidBoolean}}, fieldErrors(t, err))
}

func TestDecodeProduct(t *testing.T) {
	tests := []struct {
		name       string
		op         Operation
		body       string
		wantFields map[string][]string
		check      func(t *testing.T, in *ProductInput)
	}{
		{
			name: "create with numeric price",
			op:   ProductCreate,
			body: `{"description":"Mouse","price":99.75,"quantity":13}`,
			check: func(t *testing.T, in *ProductInput) {
				assert.Equal(t, "Mouse", *in.Description)
				assert.Equal(t, domain.Price(9975), *in.Price)
				assert.Equal(t, int64(13), *in.Quantity)
			},
		},
		{
			name: "create with string values",
			op:   ProductCreate,
			body: `{"description":"Mouse","price":"99.75","quantity":"13"}`,
			check: func(t *testing.T, in *ProductInput) {
				assert.Equal(t, domain.Price(9975), *in.Price)
				assert.Equal(t, int64(13), *in.Quantity)
			},
		},
		{
			name: "seller and is_active discarded",
			op:   ProductCreate,
			body: `{"description":"Mouse","price":1,"quantity":0,"is_active":false,"seller":"someone","id":"x"}`,
			check: func(t *testing.T, in *ProductInput) {
				assert.Equal(t, []string{"id", "is_active", "seller"}, in.Discarded)
				assert.Equal(t, int64(0), *in.Quantity)
			},
		},
		{
			name: "create missing fields",
			op:   ProductCreate,
			body: `{"description":"Mouse"}`,
			wantFields: map[string][]string{
				"price":    {domain.MsgRequired},
				"quantity": {domain.MsgRequired},
			},
		},
		{
			name:       "negative quantity",
			op:         ProductCreate,
			body:       `{"description":"Mouse","price":1,"quantity":-1}`,
			wantFields: map[string][]string{"quantity": {"Ensure this value is greater than or equal to 0."}},
		},
		{
			name:       "huge quantity",
			op:         ProductCreate,
			body:       `{"description":"Mouse","price":1,"quantity":99999999999999999999999}`,
			wantFields: map[string][]string{"quantity": {"Ensure this value is less than or equal to 2147483647."}},
		},
		{
			name:       "fractional quantity",
			op:         ProductCreate,
			body:       `{"description":"Mouse","price":1,"quantity":1.5}`,
			wantFields: map[string][]string{"quantity": {domain.MsgInvalidInteger}},
		},
		{
			name:       "bad price",
			op:         ProductCreate,
			body:       `{"description":"Mouse","price":"cheap","quantity":1}`,
			wantFields: map[string][]string{"price": {domain.MsgInvalidNumber}},
		},
		{
			name:       "too precise price",
			op:         ProductCreate,
			body:       `{"description":"Mouse","price":1.999,"quantity":1}`,
			wantFields: map[string][]string{"price": {"Ensure that there are no more than 2 decimal places."}},
		},
		{
			name:       "boolean price",
			op:         ProductCreate,
			body:       `{"description":"Mouse","price":true,"quantity":1}`,
			wantFields: map[string][]string{"price": {domain.MsgInvalidNumber}},
		},
		{
			name: "partial update",
			op:   ProductUpdate,
			body: `{"quantity":5}`,
			check: func(t *testing.T, in *ProductInput) {
				assert.Nil(t, in.Description)
				assert.Nil(t, in.Price)
				assert.Equal(t, int64(5), *in.Quantity)
			},
		},
		{
			name:       "blank description on update",
			op:         ProductUpdate,
			body:       `{"description":""}`,
			wantFields: map[string][]string{"description": {domain.MsgBlank}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeProduct(tt.op, []byte(tt.body))
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, fieldErrors(t, err))
				return
			}
			require.NoError(t, err)
			tt.check(t, in)
		})
	}

	_, err := DecodeProduct(ProductList, []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeLogin(t *testing.T) {
	in, err := DecodeLogin([]byte(`{"username":" ale ","password":" abcd ","is_superuser":true}`))
	require.NoError(t, err)
	assert.Equal(t, "ale", in.Username)
	assert.Equal(t, " abcd ", in.Password)
	assert.Equal(t, []string{"is_superuser"}, in.Discarded)

	_, err = DecodeLogin([]byte(`{"username":""}`))
	assert.Equal(t, map[string][]string{
		"username": {domain.MsgBlank},
		"password": {domain.MsgRequired},
	}, fieldErrors(t, err))
}

func TestProductInput_Apply(t *testing.T) {
	seller := domain.NewAccount("ale", "h", "A", "B", true)
	p := domain.NewProduct("Mouse", domain.MustParsePrice("99.75"), 13, seller.ID)

	in, err := DecodeProduct(ProductUpdate, []byte(`{"price":"10.50"}`))
	require.NoError(t, err)
	in.Apply(p)

	assert.Equal(t, "Mouse", p.Description)
	assert.Equal(t, "10.50", p.Price.String())
	assert.Equal(t, int64(13), p.Quantity)
	assert.Equal(t, seller.ID, p.SellerID)
}

func TestViews_MatchProfiles(t *testing.T) {
	seller := domain.NewAccount("ale", "secret-hash", "A", "B", true)
	product := domain.NewProduct("Mouse", domain.MustParsePrice("99.75"), 13, seller.ID)

	tests := []struct {
		op   Operation
		view any
	}{
		{AccountCreate, Account(AccountCreate, seller)},
		{AccountRetrieve, Account(AccountRetrieve, seller)},
		{AccountUpdate, Account(AccountUpdate, seller)},
		{AccountManage, Account(AccountManage, seller)},
		{ProductCreate, NewProductDetailView(product, seller)},
		{ProductRetrieve, NewProductDetailView(product, seller)},
		{ProductList, NewProductListView(product)},
		{Login, TokenView{Token: "k"}},
	}

	for _, tt := range tests {
		profile, ok := ProfileFor(tt.op)
		require.True(t, ok)
		assert.Equal(t, sorted(profile.Output), jsonKeys(t, tt.view), profile.Name)
	}
}

func TestViews_NeverExposeCredential(t *testing.T) {
	seller := domain.NewAccount("ale", "secret-hash", "A", "B", true)
	product := domain.NewProduct("Mouse", domain.MustParsePrice("99.75"), 13, seller.ID)

	for _, v := range []any{
		NewAccountView(seller),
		Account(AccountManage, seller),
		NewProductDetailView(product, seller),
	} {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "secret-hash")
		assert.NotContains(t, string(data), "password")
	}
}

func TestProductDetailView(t *testing.T) {
	seller := domain.NewAccount("ale", "h", "A", "B", true)
	product := domain.NewProduct("Mouse", domain.MustParsePrice("99.75"), 13, seller.ID)

	view := NewProductDetailView(product, seller)
	assert.Equal(t, "99.75", view.Price)
	assert.Equal(t, seller.ID, view.Seller.ID)

	list := NewProductListViews([]*domain.Product{product})
	require.Len(t, list, 1)
	assert.Equal(t, seller.ID, list[0].SellerID)
}
