package model

import "time"

// RefreshSkew is the safety margin subtracted from a credential's nominal
// lifetime so a token is proactively renewed before it can expire mid-call.
const RefreshSkew = time.Hour

// TokenLifetime is the assumed validity window for a freshly exchanged admin
// token. Shopify documents roughly 24 hours; we assume 23 to stay on the safe
// side of clock drift and delivery latency.
const TokenLifetime = 23 * time.Hour

// Credential is a bearer token for the Shopify Admin API together with the
// wall-clock instant after which it must no longer be trusted.
// The zero value means "no credential cached".
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Usable reports whether the credential can still be presented at the given
// instant, leaving RefreshSkew of headroom before true expiry.
func (c Credential) Usable(now time.Time) bool {
	return c.Token != "" && now.Add(RefreshSkew).Before(c.ExpiresAt)
}
