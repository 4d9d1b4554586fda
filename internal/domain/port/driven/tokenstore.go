package driven

import (
	"context"
	"errors"

	"github.com/mlaurent/consignd/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by the durable token store when
// CONSIGND_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set CONSIGND_SECRET_KEY")

// TokenStore defines the driven port for the admin-token cache. One credential
// at a time; Put overwrites in place. Backends may be process-local (memory)
// or shared (sqlite); callers must tolerate concurrent refreshes producing
// duplicate exchanges — both results are valid credentials.
type TokenStore interface {
	// Get returns the cached credential. The zero Credential (with nil error)
	// means nothing is cached; callers check Usable before trusting it.
	Get(ctx context.Context) (model.Credential, error)

	// Put stores or replaces the cached credential.
	Put(ctx context.Context, cred model.Credential) error
}
