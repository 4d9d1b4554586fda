package driven

import "context"

// AdminClient defines the driven port for authenticated GraphQL calls against
// the Shopify Admin API. Implementations acquire and attach the bearer token,
// classify transport and top-level GraphQL errors, and decode the response's
// data object into out. Application-level userErrors inside mutation payloads
// are the caller's business: they arrive decoded in out.
type AdminClient interface {
	Execute(ctx context.Context, query string, variables map[string]any, out any) error
}
