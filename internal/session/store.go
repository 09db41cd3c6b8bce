package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned for unknown or expired tokens.
var ErrNoSession = errors.New("session not found")

// Store persists sessions keyed by opaque token. In production sessions are
// written by the external identity provider sharing the store; this service
// only reads and deletes them.
type Store interface {
	Get(ctx context.Context, token string) (*User, error)
	Create(ctx context.Context, u User) (string, error)
	Delete(ctx context.Context, token string) error
}

type memoryEntry struct {
	user    User
	expires time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]memoryEntry
	now func() time.Time
}

// NewMemoryStore returns a MemoryStore whose sessions expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, m: map[string]memoryEntry{}, now: time.Now}
}

// Get returns the session's user or ErrNoSession.
func (s *MemoryStore) Get(_ context.Context, token string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[token]
	if !ok {
		return nil, ErrNoSession
	}
	if !s.now().Before(e.expires) {
		delete(s.m, token)
		return nil, ErrNoSession
	}
	u := e.user
	return &u, nil
}

// Create opens a session for u and returns its token.
func (s *MemoryStore) Create(_ context.Context, u User) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.m[token] = memoryEntry{user: u, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

// Delete removes a session; unknown tokens are ignored.
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()
	return nil
}
