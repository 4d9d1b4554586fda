// Package shopify implements the AdminClient port against the Shopify Admin
// GraphQL API, including client-credentials token acquisition and caching.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mlaurent/consignd/internal/domain/model"
	"github.com/mlaurent/consignd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AdminClient = (*Client)(nil)

// defaultTimeout bounds every upstream call as a safety net alongside context
// cancellation. No retries: each call is attempted exactly once and failures
// surface to the original caller.
const defaultTimeout = 30 * time.Second

// Client talks to one shop's Admin API. It fetches a credential from the
// token store (or brokers a fresh one) before every call.
type Client struct {
	httpClient   *http.Client
	tokens       driven.TokenStore
	clientID     string
	clientSecret string
	tokenURL     string
	graphqlURL   string
	logger       *slog.Logger
	now          func() time.Time
}

// NewClient creates a Client for the given shop. shopDomain may carry a
// scheme or trailing slash; it is normalized before URLs are derived.
func NewClient(shopDomain, clientID, clientSecret, apiVersion string, tokens driven.TokenStore, logger *slog.Logger) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		tokens:       tokens,
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		logger:       logger,
		now:          time.Now,
	}

	// An empty domain leaves the endpoint URLs empty so the token broker
	// reports an AuthError instead of dialing a malformed URL.
	if shop := normalizeShopDomain(shopDomain); shop != "" {
		c.tokenURL = fmt.Sprintf("https://%s/admin/oauth/access_token", shop)
		c.graphqlURL = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, apiVersion)
	}

	return c
}

// NewClientWithEndpoints creates a Client with explicit endpoint URLs and
// http.Client. This constructor is intended for testing, allowing injection
// of an httptest server and a fake clock.
func NewClientWithEndpoints(httpClient *http.Client, tokenURL, graphqlURL, clientID, clientSecret string, tokens driven.TokenStore, logger *slog.Logger, now func() time.Time) *Client {
	if now == nil {
		now = time.Now
	}
	return &Client{
		httpClient:   httpClient,
		tokens:       tokens,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		graphqlURL:   graphqlURL,
		logger:       logger,
		now:          now,
	}
}

// graphqlRequest is the JSON body sent to the Admin GraphQL endpoint.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlEnvelope is the outer shape of every Admin GraphQL response.
type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute runs one GraphQL call with a valid admin token attached and decodes
// the response's data object into out (out may be nil to discard it).
//
// Classification order: transport failure -> ConnectionError; unparseable
// body -> ConnectionError with truncated body; top-level errors list ->
// UpstreamError aggregating all messages; non-2xx without an errors list ->
// UpstreamError with status and truncated body. Mutation userErrors are left
// in the decoded payload for the caller to inspect.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshaling graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating graphql request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Shopify-Access-Token", token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &model.ConnectionError{Message: "shopify admin api unreachable", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.ConnectionError{Message: "reading shopify response", Err: err}
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &model.ConnectionError{
			Message: fmt.Sprintf("non-JSON response (status %d): %s", resp.StatusCode, model.Truncate(string(raw), 100)),
		}
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return &model.UpstreamError{Messages: messages}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.UpstreamError{
			Status:   resp.StatusCode,
			Messages: []string{model.Truncate(string(raw), 200)},
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &model.ConnectionError{Message: "decoding shopify response data", Err: err}
		}
	}

	return nil
}
