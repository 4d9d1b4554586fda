package model

import (
	"fmt"
	"strings"
)

// ValidationError means client input violated a stated constraint. Detected
// before any upstream call and returned to the client as a 400.
type ValidationError struct {
	Message  string
	Filename string // offending file, when the violation is per-file
}

func (e *ValidationError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Filename)
	}
	return e.Message
}

// NewValidationError builds a ValidationError without a file reference.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthError means the credential configuration is unusable or the token
// exchange with Shopify failed.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// ConnectionError means the upstream platform was unreachable or answered
// with something that is not JSON.
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UpstreamError means Shopify was reachable but reported an error, either a
// top-level GraphQL errors list, a non-success HTTP status, or a mutation's
// application-level userErrors treated as fatal by the caller.
type UpstreamError struct {
	Status   int // HTTP status when relevant, else 0
	Messages []string
}

func (e *UpstreamError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Status != 0 {
		return fmt.Sprintf("shopify api returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("shopify api error: %s", msg)
}

// Truncate shortens upstream response bodies before embedding them in error
// messages so logs and client envelopes stay readable.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
