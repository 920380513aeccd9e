package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/NikamRenuka/cabadmin/internal/models"
)

// Store keeps issued admin sessions. Sessions expire after the configured
// TTL; there is no sliding renewal.
type Store interface {
	Create(user models.User) (string, error)
	Get(token string) (models.User, bool)
	Delete(token string)
}

type memEntry struct {
	user models.User
	ts   time.Time
}

// MemoryStore is the single-process session store: a TTL map with lazy
// expiry on read.
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]memEntry
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &MemoryStore{store: make(map[string]memEntry), ttl: ttl}
}

func (m *MemoryStore) Create(user models.User) (string, error) {
	token := NewToken()
	m.mu.Lock()
	m.store[token] = memEntry{user: user, ts: time.Now()}
	m.mu.Unlock()
	return token, nil
}

func (m *MemoryStore) Get(token string) (models.User, bool) {
	m.mu.RLock()
	e, ok := m.store[token]
	m.mu.RUnlock()
	if !ok {
		return models.User{}, false
	}
	if time.Since(e.ts) > m.ttl {
		m.mu.Lock()
		delete(m.store, token)
		m.mu.Unlock()
		return models.User{}, false
	}
	return e.user, true
}

func (m *MemoryStore) Delete(token string) {
	m.mu.Lock()
	delete(m.store, token)
	m.mu.Unlock()
}

// NewToken returns an opaque random session token.
func NewToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
