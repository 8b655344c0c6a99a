package client

import (
	"fmt"
	"sync"
)

// Session owns the tokens of the signed-in user. Init loads them from the
// store, Teardown wipes the store and the tokens.
type Session struct {
	mu      sync.RWMutex
	store   *LocalStore
	access  string
	refresh string
}

// NewSession returns a session backed by store. A nil store keeps the tokens
// in memory only.
func NewSession(store *LocalStore) *Session {
	return &Session{store: store}
}

// Init loads previously saved tokens.
func (s *Session) Init() error {
	if s.store == nil {
		return nil
	}
	var access, refresh string
	if _, err := s.store.Load(KeyAccessToken, &access); err != nil {
		return fmt.Errorf("failed to load access token: %w", err)
	}
	if _, err := s.store.Load(KeyRefreshToken, &refresh); err != nil {
		return fmt.Errorf("failed to load refresh token: %w", err)
	}

	s.mu.Lock()
	s.access, s.refresh = access, refresh
	s.mu.Unlock()
	return nil
}

// Tokens returns the current access and refresh tokens.
func (s *Session) Tokens() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.refresh
}

// Authenticated reports whether an access token is held.
func (s *Session) Authenticated() bool {
	access, _ := s.Tokens()
	return access != ""
}

// SetTokens replaces both tokens and persists them.
func (s *Session) SetTokens(access, refresh string) error {
	s.mu.Lock()
	s.access, s.refresh = access, refresh
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Save(KeyAccessToken, access); err != nil {
		return err
	}
	return s.store.Save(KeyRefreshToken, refresh)
}

// Teardown forgets the tokens and clears everything kept locally.
func (s *Session) Teardown() error {
	s.mu.Lock()
	s.access, s.refresh = "", ""
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}
