package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	userServices "stormbringer/internal/users/services"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*chi.Mux, huma.API, []Mounted) {
	t.Helper()

	r := chi.NewRouter()
	api := humachi.New(r, HumaConfig())
	mounted := NewModules(Dependencies{
		Store:      docstore.NewMemoryStore(),
		Tokens:     userServices.NewTokenService([]byte("test-secret"), time.Hour),
		Authorizer: middleware.NewMemoryAuthorizer(),
	})
	Mount(api, r, mounted)

	return r, api, mounted
}

func do(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMountRegistersEveryModule(t *testing.T) {
	_, api, mounted := newTestServer(t)

	paths := api.OpenAPI().Paths
	for _, p := range []string{
		"/users/login",
		"/users/register",
		"/catalog/classes",
		"/characters",
		"/characters/{id}",
		"/campaigns",
		"/campaigns/{id}/chats",
		"/campaigns/join/{token}",
	} {
		assert.Contains(t, paths, p)
	}

	names := make([]string, 0, len(mounted))
	for _, m := range Modules(mounted) {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"users", "catalog", "characters", "campaigns"}, names)
	assert.Contains(t, api.OpenAPI().Components.SecuritySchemes, "bearerAuth")
}

func TestModuleHealthRoutes(t *testing.T) {
	r, _, _ := newTestServer(t)

	for _, name := range []string{"users", "catalog", "characters", "campaigns"} {
		rec := do(t, r, http.MethodGet, "/modules/"+name+"/health", "", "")
		require.Equal(t, http.StatusOK, rec.Code, name)
	}
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	r, _, _ := newTestServer(t)

	rec := do(t, r, http.MethodGet, "/campaigns", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterLoginCreateCampaign(t *testing.T) {
	r, _, _ := newTestServer(t)

	rec := do(t, r, http.MethodPost, "/users/register", "", `{"username":"elric","password":"stormbringer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/users/login", "", `{"username":"Elric","password":"stormbringer"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Set-Cookie"), middleware.AuthCookieName+"=")

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = do(t, r, http.MethodPost, "/campaigns", login.Token, `{"name":"The Vanishing Tower"}`)
	require.Less(t, rec.Code, 300, rec.Body.String())

	var created struct {
		ID      string   `json:"id"`
		Players []string `json:"players"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created.Players, 1)

	rec = do(t, r, http.MethodGet, "/campaigns/"+created.ID, login.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
