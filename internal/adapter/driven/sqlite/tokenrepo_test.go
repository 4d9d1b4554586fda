package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaurent/consignd/internal/domain/model"
	"github.com/mlaurent/consignd/internal/domain/port/driven"
)

// testKey is a fixed 32-byte AES-256 key for tests.
var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestTokenRepo_PutAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, testKey)
	ctx := context.Background()

	expiry := time.Now().Add(model.TokenLifetime).Truncate(time.Second)
	err := repo.Put(ctx, model.Credential{Token: "shpat_secret", ExpiresAt: expiry})
	require.NoError(t, err)

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shpat_secret", cred.Token)
	assert.True(t, cred.ExpiresAt.Equal(expiry), "expiry should survive the round trip")
}

func TestTokenRepo_GetEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, testKey)

	cred, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cred.Token)
}

func TestTokenRepo_PutOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, model.Credential{Token: "old", ExpiresAt: time.Now()}))
	require.NoError(t, repo.Put(ctx, model.Credential{Token: "new", ExpiresAt: time.Now().Add(time.Hour)}))

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", cred.Token)
}

func TestTokenRepo_TokenEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, model.Credential{Token: "shpat_secret", ExpiresAt: time.Now()}))

	var stored string
	err := db.Reader.QueryRowContext(ctx, `SELECT token FROM admin_tokens WHERE id = 1`).Scan(&stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, "shpat_secret", "raw token must not appear in the database")
}

func TestTokenRepo_NilKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	err = repo.Put(ctx, model.Credential{Token: "x", ExpiresAt: time.Now()})
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestTokenRepo_WrongKeyFailsDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewTokenRepo(db, testKey).Put(ctx, model.Credential{Token: "shpat_secret", ExpiresAt: time.Now()}))

	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	_, err := NewTokenRepo(db, otherKey).Get(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt")
}
