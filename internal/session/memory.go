package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. It suits single-instance runs and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, userID int64) (*Session, error) {
	now := m.now().UTC()
	sess := &Session{Token: NewToken(), UserID: userID, IssuedAt: now, ExpiresAt: now.Add(m.ttl)}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Token] = sess
	copied := *sess
	return &copied, nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(sess.ExpiresAt) {
		delete(m.sessions, token)
		return nil, ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemoryStore) RevokeAllForUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, sess := range m.sessions {
		if sess.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}
