package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mlaurent/consignd/internal/domain/model"
	"github.com/mlaurent/consignd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenRepo)(nil)

// TokenRepo is the SQLite implementation of the TokenStore port. The table
// holds at most one row; Put overwrites it. Token values are encrypted with
// AES-256-GCM before write and decrypted after read, so a leaked database
// file does not leak a live admin token.
type TokenRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil disables the store.
}

// NewTokenRepo creates a TokenRepo. key must be 32 bytes for AES-256-GCM, or
// nil to disable the store (all operations return ErrEncryptionKeyNotSet).
func NewTokenRepo(db *DB, key []byte) *TokenRepo {
	return &TokenRepo{db: db, key: key}
}

// Get returns the stored credential, or the zero Credential when the table
// is empty.
func (r *TokenRepo) Get(ctx context.Context) (model.Credential, error) {
	if r.key == nil {
		return model.Credential{}, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT token, expires_at FROM admin_tokens WHERE id = 1`
	var encrypted string
	var expiresAt int64
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&encrypted, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, nil
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("get admin token: %w", err)
	}

	token, err := r.decrypt(encrypted)
	if err != nil {
		return model.Credential{}, fmt.Errorf("decrypt admin token: %w", err)
	}

	return model.Credential{Token: token, ExpiresAt: time.Unix(expiresAt, 0)}, nil
}

// Put stores or replaces the cached credential.
func (r *TokenRepo) Put(ctx context.Context, cred model.Credential) error {
	encrypted, err := r.encrypt(cred.Token)
	if err != nil {
		return err
	}

	const query = `INSERT OR REPLACE INTO admin_tokens (id, token, expires_at, updated_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)`
	_, err = r.db.Writer.ExecContext(ctx, query, encrypted, cred.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("put admin token: %w", err)
	}
	return nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded
// string containing the nonce (12 bytes) prepended to the ciphertext.
func (r *TokenRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *TokenRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}
