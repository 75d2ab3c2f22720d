package signer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coursevault/internal/domain"
	"coursevault/internal/port"
)

// MemStore is the in-memory session store. Sessions are the only state the
// signer owns; they live for the credential TTL window and are swept by
// the janitor afterwards.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.UploadSession
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]*domain.UploadSession)}
}

func (m *MemStore) Put(ctx context.Context, sess *domain.UploadSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.sessions[sess.SessionID] = &cp
	return nil
}

func (m *MemStore) Get(ctx context.Context, sessionID string) (*domain.UploadSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, domain.ErrSessionNotFound)
	}
	if time.Now().After(sess.ExpiresAt) {
		return nil, fmt.Errorf("session %q expired at %s: %w",
			sessionID, sess.ExpiresAt.Format(time.RFC3339), domain.ErrSessionNotFound)
	}
	cp := *sess
	return &cp, nil
}

func (m *MemStore) MarkCommitted(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %q: %w", sessionID, domain.ErrSessionNotFound)
	}
	sess.Committed = true
	return nil
}

func (m *MemStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemStore) Expired(ctx context.Context) ([]*domain.UploadSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*domain.UploadSession
	for _, sess := range m.sessions {
		if now.After(sess.ExpiresAt) {
			cp := *sess
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ port.SessionStore = (*MemStore)(nil)
