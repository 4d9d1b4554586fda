package shopify_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaurent/consignd/internal/adapter/driven/memory"
	"github.com/mlaurent/consignd/internal/adapter/driven/shopify"
	"github.com/mlaurent/consignd/internal/domain/model"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// upstream is an httptest double for the token endpoint and the GraphQL
// endpoint of one shop.
type upstream struct {
	server *httptest.Server

	tokenCalls   int
	tokenStatus  int
	tokenBody    string
	graphqlCalls int
	graphqlFn    func(w http.ResponseWriter, r *http.Request)

	lastAccessTokenHeader string
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"shpat_fresh"}`,
	}
	u.graphqlFn = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		u.tokenCalls++
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "client_credentials", req["grant_type"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.tokenStatus)
		_, _ = w.Write([]byte(u.tokenBody))
	})
	mux.HandleFunc("/admin/api/2025-10/graphql.json", func(w http.ResponseWriter, r *http.Request) {
		u.graphqlCalls++
		u.lastAccessTokenHeader = r.Header.Get("X-Shopify-Access-Token")
		u.graphqlFn(w, r)
	})

	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) client(tokens *memory.TokenStore, now func() time.Time) *shopify.Client {
	return shopify.NewClientWithEndpoints(
		u.server.Client(),
		u.server.URL+"/admin/oauth/access_token",
		u.server.URL+"/admin/api/2025-10/graphql.json",
		"client-id",
		"client-secret",
		tokens,
		discardLogger,
		now,
	)
}

func TestExecute_BrokersTokenOnEmptyCache(t *testing.T) {
	u := newUpstream(t)
	client := u.client(memory.NewTokenStore(), nil)

	err := client.Execute(context.Background(), "query { shop { name } }", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, u.tokenCalls)
	assert.Equal(t, "shpat_fresh", u.lastAccessTokenHeader)
}

// Two calls inside the skew window must reuse one exchange.
func TestExecute_ReusesCachedToken(t *testing.T) {
	u := newUpstream(t)
	client := u.client(memory.NewTokenStore(), nil)
	ctx := context.Background()

	require.NoError(t, client.Execute(ctx, "query {}", nil, nil))
	require.NoError(t, client.Execute(ctx, "query {}", nil, nil))

	assert.Equal(t, 1, u.tokenCalls, "second call must hit the cache")
	assert.Equal(t, 2, u.graphqlCalls)
}

func TestExecute_RefreshesInsideSkewWindow(t *testing.T) {
	u := newUpstream(t)
	tokens := memory.NewTokenStore()
	client := u.client(tokens, nil)
	ctx := context.Background()

	// Expires in 30 minutes: still technically live, but inside the 1h skew.
	require.NoError(t, tokens.Put(ctx, model.Credential{
		Token:     "shpat_stale",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}))

	require.NoError(t, client.Execute(ctx, "query {}", nil, nil))

	assert.Equal(t, 1, u.tokenCalls, "stale token must trigger an exchange")
	assert.Equal(t, "shpat_fresh", u.lastAccessTokenHeader)
}

func TestExecute_StoresCredentialWithAssumedLifetime(t *testing.T) {
	u := newUpstream(t)
	tokens := memory.NewTokenStore()
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	client := u.client(tokens, func() time.Time { return base })
	ctx := context.Background()

	require.NoError(t, client.Execute(ctx, "query {}", nil, nil))

	cred, err := tokens.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shpat_fresh", cred.Token)
	assert.Equal(t, base.Add(model.TokenLifetime), cred.ExpiresAt)
}

func TestExecute_TokenEndpointFailure(t *testing.T) {
	u := newUpstream(t)
	u.tokenStatus = http.StatusUnauthorized
	u.tokenBody = `{"error":"invalid_client"}`
	client := u.client(memory.NewTokenStore(), nil)

	err := client.Execute(context.Background(), "query {}", nil, nil)

	var authErr *model.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Error(), "invalid_client")
	assert.Equal(t, 0, u.graphqlCalls, "graphql must not be called without a token")
}

func TestExecute_TokenMissingInResponse(t *testing.T) {
	u := newUpstream(t)
	u.tokenBody = `{"scope":"read_files"}`
	client := u.client(memory.NewTokenStore(), nil)

	err := client.Execute(context.Background(), "query {}", nil, nil)

	var authErr *model.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Error(), "no access_token")
}

func TestExecute_MissingCredentials(t *testing.T) {
	client := shopify.NewClient("", "", "", "2025-10", memory.NewTokenStore(), discardLogger)

	err := client.Execute(context.Background(), "query {}", nil, nil)

	var authErr *model.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestExecute_TransportFailure(t *testing.T) {
	u := newUpstream(t)
	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.Put(context.Background(), model.Credential{
		Token:     "shpat_live",
		ExpiresAt: time.Now().Add(model.TokenLifetime),
	}))
	client := u.client(tokens, nil)
	u.server.Close()

	err := client.Execute(context.Background(), "query {}", nil, nil)

	var connErr *model.ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestExecute_NonJSONBody(t *testing.T) {
	u := newUpstream(t)
	u.graphqlFn = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>Bad Gateway</html>"))
	}
	client := u.client(memory.NewTokenStore(), nil)

	err := client.Execute(context.Background(), "query {}", nil, nil)

	var connErr *model.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Error(), "Bad Gateway")
}

func TestExecute_TopLevelErrors(t *testing.T) {
	u := newUpstream(t)
	u.graphqlFn = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[{"message":"Throttled"},{"message":"Field deprecated"}]}`))
	}
	client := u.client(memory.NewTokenStore(), nil)

	err := client.Execute(context.Background(), "query {}", nil, nil)

	var upstreamErr *model.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, []string{"Throttled", "Field deprecated"}, upstreamErr.Messages)
}

func TestExecute_ErrorStatusWithJSONBody(t *testing.T) {
	u := newUpstream(t)
	u.graphqlFn = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"data":null}`))
	}
	client := u.client(memory.NewTokenStore(), nil)

	err := client.Execute(context.Background(), "query {}", nil, nil)

	var upstreamErr *model.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusPaymentRequired, upstreamErr.Status)
}

func TestExecute_DecodesData(t *testing.T) {
	u := newUpstream(t)
	u.graphqlFn = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"shop":{"name":"Reloved Atelier"}}}`))
	}
	client := u.client(memory.NewTokenStore(), nil)

	var out struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	require.NoError(t, client.Execute(context.Background(), "query { shop { name } }", nil, &out))
	assert.Equal(t, "Reloved Atelier", out.Shop.Name)
}
