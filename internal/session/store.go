package session

import (
	"context"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

// TokenStore is device-local storage for the session tokens.
// An empty string means "no token".
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	// SetTokens stores the access token, and the refresh token when non-empty.
	SetTokens(ctx context.Context, tokens models.Tokens) error
	ClearAccessToken(ctx context.Context) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps tokens for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AccessToken(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, nil
}

func (s *MemoryStore) RefreshToken(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh, nil
}

func (s *MemoryStore) SetTokens(_ context.Context, tokens models.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.refresh = tokens.RefreshToken
	}
	return nil
}

func (s *MemoryStore) ClearAccessToken(context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.access, s.refresh = "", ""
	s.mu.Unlock()
	return nil
}
