package memstore

// Package memstore provides an in-memory session store for development mode
// and tests. It satisfies the same contract as the Redis adapter.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	"github.com/lapor-kampus/lapor-ui-api/internal/ports"
)

// Store is a mutex-guarded map of sessions. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// New creates an empty in-memory session store.
func New() *Store {
	return &Store{sessions: make(map[string]domainauth.Session)}
}

func (s *Store) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Credentials.AccessToken == "" {
		return errors.New("session has no access token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored sessions, mainly for tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
