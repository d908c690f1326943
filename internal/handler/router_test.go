package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/marketplace/internal/auth"
	"github.com/prn-tf/marketplace/internal/cache/memory"
	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/metrics"
	memrepo "github.com/prn-tf/marketplace/internal/repository/memory"
	"github.com/prn-tf/marketplace/internal/service"
)

type testServer struct {
	*httptest.Server
	store    *memrepo.Store
	accounts *service.AccountService
	metrics  *metrics.Metrics
	health   *fakeHealth
}

type fakeHealth struct{ err error }

func (f *fakeHealth) Health(context.Context) error { return f.err }

func newTestServer(t *testing.T, pageSize int) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	store := memrepo.NewStore()
	cache := memory.NewCache(0)
	t.Cleanup(cache.Stop)

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	authn := auth.NewAuthenticator(store.Tokens(), store.Accounts(), cache, auth.Config{CacheTTL: time.Minute}, logger)
	accounts := service.NewAccountService(store.Accounts(), bcrypt.MinCost, logger)
	health := &fakeHealth{}

	router := NewRouter(RouterConfig{
		AccountService: accounts,
		ProductService: service.NewProductService(store.Products(), store.Accounts(), logger),
		AuthService:    service.NewAuthService(store.Accounts(), store.Tokens(), authn, 0, logger),
		Authenticator:  authn,
		Metrics:        m,
		MetricsPath:    "/metrics",
		Health:         health,
		MaxBodySize:    1 << 16,
		PageSize:       pageSize,
		Logger:         logger,
	})

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, store: store, accounts: accounts, metrics: m, health: health}
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (s *testServer) do(t *testing.T, method, path, token, body string) response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.AuthorizationHeader, "Token "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: data}
}

func (s *testServer) register(t *testing.T, username, password string, seller bool) map[string]any {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"username":   username,
		"password":   password,
		"first_name": strings.ToUpper(username[:1]) + username[1:],
		"last_name":  "Tester",
		"is_seller":  seller,
	})
	resp := s.do(t, http.MethodPost, "/api/accounts/", "", string(body))
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	return resp.json(t)
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp := s.do(t, http.MethodPost, "/api/login/", "", string(body))
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	token, _ := resp.json(t)["token"].(string)
	require.Len(t, token, domain.TokenKeyLength)
	return token
}

func TestSellerFlow(t *testing.T) {
	s := newTestServer(t, 10)

	ale := s.register(t, "ale", "abcd", true)
	s.register(t, "deb", "efgh", false)
	aleToken := s.login(t, "ale", "abcd")
	debToken := s.login(t, "deb", "efgh")

	resp := s.do(t, http.MethodPost, "/api/products/", aleToken,
		`{"description":"Mouse","price":99.75,"quantity":13}`)
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))

	product := resp.json(t)
	assert.Equal(t, "Mouse", product["description"])
	assert.Equal(t, "99.75", product["price"])
	assert.EqualValues(t, 13, product["quantity"])
	assert.Equal(t, true, product["is_active"])
	seller := product["seller"].(map[string]any)
	assert.Equal(t, ale["id"], seller["id"])
	assert.NotContains(t, seller, "password")

	path := "/api/products/" + product["id"].(string) + "/"

	resp = s.do(t, http.MethodPatch, path, debToken, `{"quantity":1,"description":"Stolen"}`)
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, DetailForbidden, resp.json(t)["detail"])

	resp = s.do(t, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, resp.status)
	unchanged := resp.json(t)
	assert.EqualValues(t, 13, unchanged["quantity"])
	assert.Equal(t, "Mouse", unchanged["description"])

	resp = s.do(t, http.MethodPatch, path, "", `{"quantity":1}`)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Token", resp.header.Get("WWW-Authenticate"))
	assert.Equal(t, DetailNotAuthenticated, resp.json(t)["detail"])

	resp = s.do(t, http.MethodPatch, path, aleToken, `{"quantity":12,"seller":"ignored"}`)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	assert.EqualValues(t, 12, resp.json(t)["quantity"])

	resp = s.do(t, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.EqualValues(t, 12, resp.json(t)["quantity"])

	resp = s.do(t, http.MethodGet, "/api/products", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	listing := resp.json(t)
	assert.EqualValues(t, 1, listing["count"])
	results := listing["results"].([]any)
	require.Len(t, results, 1)
	item := results[0].(map[string]any)
	assert.Equal(t, ale["id"], item["seller_id"])
	assert.NotContains(t, item, "id")
}

func TestProductCreateRules(t *testing.T) {
	s := newTestServer(t, 10)
	s.register(t, "ale", "abcd", true)
	s.register(t, "deb", "efgh", false)
	aleToken := s.login(t, "ale", "abcd")
	debToken := s.login(t, "deb", "efgh")

	resp := s.do(t, http.MethodPost, "/api/products/", "", `{"description":"Mouse","price":1,"quantity":1}`)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = s.do(t, http.MethodPost, "/api/products/", debToken, `{"description":"Mouse","price":1,"quantity":1}`)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = s.do(t, http.MethodPost, "/api/products/", aleToken, `{"description":"Mouse","price":1,"quantity":-1}`)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.Contains(t, resp.json(t), "quantity")

	resp = s.do(t, http.MethodPost, "/api/products/", aleToken, `{"description":`)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.True(t, strings.HasPrefix(resp.json(t)["detail"].(string), "JSON parse error"))

	resp = s.do(t, http.MethodGet, "/api/products/not-a-uuid/", "", "")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, DetailNotFound, resp.json(t)["detail"])
}

func TestAccountEndpoints(t *testing.T) {
	s := newTestServer(t, 10)

	ale := s.register(t, "ale", "abcd", true)
	assert.NotContains(t, ale, "password")
	assert.Equal(t, true, ale["is_active"])
	assert.Equal(t, false, ale["is_superuser"])

	resp := s.do(t, http.MethodPost, "/api/accounts/", "",
		`{"username":"ale","password":"x","first_name":"A","last_name":"B"}`)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, []any{domain.MsgUsernameTaken}, resp.json(t)["username"])

	s.register(t, "deb", "efgh", false)
	aleToken := s.login(t, "ale", "abcd")
	debToken := s.login(t, "deb", "efgh")
	alePath := "/api/accounts/" + ale["id"].(string) + "/"

	resp = s.do(t, http.MethodPatch, alePath, debToken, `{"first_name":"Mallory"}`)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = s.do(t, http.MethodGet, alePath, "", "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Ale", resp.json(t)["first_name"])

	resp = s.do(t, http.MethodPatch, alePath, aleToken, `{"first_name":"Alejandra","is_active":false}`)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	updated := resp.json(t)
	assert.Equal(t, "Alejandra", updated["first_name"])
	assert.Equal(t, true, updated["is_active"])

	resp = s.do(t, http.MethodGet, alePath, "", "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Alejandra", resp.json(t)["first_name"])

	resp = s.do(t, http.MethodGet, "/api/accounts/newest/1/", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	var newest []map[string]any
	require.NoError(t, json.Unmarshal(resp.body, &newest))
	require.Len(t, newest, 1)
	assert.Equal(t, "deb", newest[0]["username"])

	resp = s.do(t, http.MethodGet, "/api/accounts/newest/abc/", "", "")
	assert.Equal(t, http.StatusNotFound, resp.status)

	resp = s.do(t, http.MethodGet, "/api/accounts/"+ale["id"].(string)+"/management", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.NotContains(t, resp.json(t), "id")
}

func TestManagementToggle(t *testing.T) {
	s := newTestServer(t, 10)
	ctx := context.Background()

	_, err := s.accounts.CreateSuperuser(ctx, service.CreateSuperuserInput{
		Username: "root", Password: "secret", FirstName: "Root", LastName: "Admin",
	})
	require.NoError(t, err)
	deb := s.register(t, "deb", "efgh", false)

	rootToken := s.login(t, "root", "secret")
	debToken := s.login(t, "deb", "efgh")
	path := "/api/accounts/" + deb["id"].(string) + "/management/"

	resp := s.do(t, http.MethodPatch, path, debToken, `{"is_active":false}`)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = s.do(t, http.MethodPatch, path, rootToken, `{}`)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, []any{domain.MsgRequired}, resp.json(t)["is_active"])

	resp = s.do(t, http.MethodPatch, path, rootToken, `{"is_active":false,"username":"renamed"}`)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	body := resp.json(t)
	assert.Equal(t, false, body["is_active"])
	assert.Equal(t, "deb", body["username"])

	// The deactivated account's token no longer authenticates.
	resp = s.do(t, http.MethodPatch, "/api/accounts/"+deb["id"].(string)+"/", debToken, `{"first_name":"D"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	login := s.do(t, http.MethodPost, "/api/login/", "", `{"username":"deb","password":"efgh"}`)
	require.Equal(t, http.StatusBadRequest, login.status)
	assert.Equal(t, []any{domain.MsgBadCredentials}, login.json(t)[domain.NonFieldErrorsKey])

	resp = s.do(t, http.MethodPatch, path, rootToken, `{"is_active":true}`)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	assert.Equal(t, true, resp.json(t)["is_active"])

	debToken = s.login(t, "deb", "efgh")
	resp = s.do(t, http.MethodPatch, "/api/accounts/"+deb["id"].(string)+"/", debToken, `{"first_name":"D"}`)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	assert.Equal(t, "D", resp.json(t)["first_name"])
}

func TestPagination(t *testing.T) {
	s := newTestServer(t, 2)
	for _, name := range []string{"ana", "bob", "cyd"} {
		s.register(t, name, "pw", false)
	}

	resp := s.do(t, http.MethodGet, "/api/accounts/", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	first := resp.json(t)
	assert.EqualValues(t, 3, first["count"])
	assert.Nil(t, first["previous"])
	assert.Equal(t, s.URL+"/api/accounts/?page=2", first["next"])
	assert.Len(t, first["results"], 2)

	resp = s.do(t, http.MethodGet, "/api/accounts/?page=2", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	second := resp.json(t)
	assert.Nil(t, second["next"])
	assert.Equal(t, s.URL+"/api/accounts/", second["previous"])
	results := second["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "cyd", results[0].(map[string]any)["username"])

	for _, page := range []string{"3", "0", "x", "4611686018427387904", "9223372036854775807", "99999999999999999999"} {
		resp = s.do(t, http.MethodGet, "/api/accounts/?page="+page, "", "")
		assert.Equal(t, http.StatusNotFound, resp.status, page)
		assert.Equal(t, DetailInvalidPage, resp.json(t)["detail"])
	}

	resp = s.do(t, http.MethodGet, "/api/products/", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, []any{}, resp.json(t)["results"])
}

func TestRouterEdges(t *testing.T) {
	s := newTestServer(t, 10)

	resp := s.do(t, http.MethodGet, "/api/nothing/", "", "")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, DetailNotFound, resp.json(t)["detail"])

	resp = s.do(t, http.MethodDelete, "/api/products/", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.status)
	assert.Equal(t, `Method "DELETE" not allowed.`, resp.json(t)["detail"])

	resp = s.do(t, http.MethodGet, "/api/accounts/", "not-a-real-token", "")
	assert.Equal(t, http.StatusOK, resp.status, "malformed credentials read as anonymous")

	resp = s.do(t, http.MethodPost, "/api/login/", "", `{"username":"","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, []any{domain.MsgBlank}, resp.json(t)["username"])

	resp = s.do(t, http.MethodPost, "/api/accounts/", "", `{"username":"`+strings.Repeat("a", 1<<17)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.status)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, 10)

	resp := s.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "healthy", resp.json(t)["status"])

	s.health.err = errors.New("database is closed")
	resp = s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.status)
	assert.Equal(t, "unhealthy", resp.json(t)["status"])

	s.do(t, http.MethodPost, "/api/products/", "", `{}`)

	resp = s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.status)
	text := string(resp.body)
	assert.Contains(t, text, `marketplace_http_requests_total{method="POST",route="/api/products",status="401"} 1`)
	assert.Contains(t, text, `marketplace_permission_denials_total{action="create_product",outcome="unauthenticated"} 1`)
	assert.Contains(t, text, `marketplace_auth_requests_total{type="anonymous"} 1`)
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  int
		ok    bool
	}{
		{"", 1, true},
		{"page=2", 2, true},
		{"page=0", 0, false},
		{"page=-1", 0, false},
		{"page=1.5", 0, false},
		{"page=922337203685477580", 922337203685477580, true},
		{"page=922337203685477581", 0, false},
		{"page=9223372036854775807", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/accounts/?"+tt.query, nil)
			p, ok := parsePage(r, 10)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, p.number)
			assert.GreaterOrEqual(t, p.options().Offset, 0)
		})
	}
}
