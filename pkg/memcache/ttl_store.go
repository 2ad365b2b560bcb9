// Package mem is a small in-process TTL store used when no Redis instance is
// configured.
package mem

import (
	"sync"
	"time"
)

type Store interface {
	Set(key string, value []byte, ttl time.Duration)

	// Get returns the value for key if present and not expired.
	Get(key string) ([]byte, bool)

	Delete(key string)
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

type TTLStore struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewTTLStore() *TTLStore {
	return &TTLStore{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *TTLStore) Set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry{
		value:     append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}
}

func (s *TTLStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		s.Delete(key) // cleanup expired
		return nil, false
	}
	return e.value, true
}

func (s *TTLStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}
