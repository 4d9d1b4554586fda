package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaurent/consignd/internal/domain/model"
)

func TestTokenStore_EmptyByDefault(t *testing.T) {
	store := NewTokenStore()

	cred, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cred.Token)
	assert.False(t, cred.Usable(time.Now()))
}

func TestTokenStore_PutThenGet(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()
	expiry := time.Now().Add(model.TokenLifetime)

	err := store.Put(ctx, model.Credential{Token: "shpat_abc", ExpiresAt: expiry})
	require.NoError(t, err)

	cred, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc", cred.Token)
	assert.Equal(t, expiry, cred.ExpiresAt)
}

func TestTokenStore_PutOverwrites(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, model.Credential{Token: "old", ExpiresAt: time.Now()}))
	require.NoError(t, store.Put(ctx, model.Credential{Token: "new", ExpiresAt: time.Now().Add(time.Hour)}))

	cred, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", cred.Token)
}
