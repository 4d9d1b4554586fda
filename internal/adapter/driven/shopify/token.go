package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mlaurent/consignd/internal/domain/model"
)

// tokenRequest is the client-credentials exchange payload.
type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

// tokenResponse is the subset of the token endpoint response we rely on.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ensureToken returns a usable admin token, reusing the cached credential
// when it still has RefreshSkew of headroom and brokering a fresh exchange
// otherwise. Concurrent refreshes are not coordinated: two simultaneous
// cache misses both exchange, both results are valid, one wins the store.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	cred, err := c.tokens.Get(ctx)
	if err != nil {
		// A broken cache backend must not take the service down; treat it
		// as a miss and pay for an extra exchange.
		c.logger.Warn("token store read failed, brokering fresh token", "error", err)
	} else if cred.Usable(c.now()) {
		return cred.Token, nil
	}

	return c.exchangeToken(ctx)
}

// exchangeToken performs the client-credentials grant against the shop's
// token endpoint and stores the result with the assumed 23h lifetime.
func (c *Client) exchangeToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" || c.tokenURL == "" {
		return "", &model.AuthError{Message: "missing required credentials for client credentials grant"}
	}

	bodyBytes, err := json.Marshal(tokenRequest{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		GrantType:    "client_credentials",
	})
	if err != nil {
		return "", &model.AuthError{Message: "marshaling token request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &model.AuthError{Message: "creating token request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &model.AuthError{Message: "token exchange failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &model.AuthError{Message: "reading token response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &model.AuthError{
			Message: "token request failed (" + resp.Status + "): " + model.Truncate(string(raw), 200),
		}
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", &model.AuthError{Message: "token response is not JSON: " + model.Truncate(string(raw), 200)}
	}
	if tok.AccessToken == "" {
		return "", &model.AuthError{Message: "no access_token in response: " + model.Truncate(string(raw), 200)}
	}

	cred := model.Credential{Token: tok.AccessToken, ExpiresAt: c.now().Add(model.TokenLifetime)}
	if err := c.tokens.Put(ctx, cred); err != nil {
		// The token is still good for this call; only the cache write failed.
		c.logger.Warn("token store write failed", "error", err)
	}

	c.logger.Info("admin token refreshed", "expires_at", cred.ExpiresAt)
	return tok.AccessToken, nil
}

// normalizeShopDomain strips the scheme and trailing slash from a configured
// shop domain and trims surrounding whitespace.
func normalizeShopDomain(raw string) string {
	shop := strings.TrimSpace(raw)
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	shop = strings.TrimSuffix(shop, "/")
	return strings.TrimSpace(shop)
}
