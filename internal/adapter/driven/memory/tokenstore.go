// Package memory provides the default single-process TokenStore backend.
package memory

import (
	"context"
	"sync"

	"github.com/mlaurent/consignd/internal/domain/model"
	"github.com/mlaurent/consignd/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore caches one admin credential in process memory. Instances do not
// coordinate: with multiple replicas each holds its own token, which costs an
// extra exchange per replica and nothing else.
type TokenStore struct {
	mu   sync.RWMutex
	cred model.Credential
}

// NewTokenStore creates an empty in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the cached credential; the zero value when nothing is stored.
func (s *TokenStore) Get(_ context.Context) (model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, nil
}

// Put overwrites the cached credential in place.
func (s *TokenStore) Put(_ context.Context, cred model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	return nil
}
