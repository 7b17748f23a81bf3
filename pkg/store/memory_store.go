package store

import (
	"github.com/patrickmn/go-cache"

	"lekha-gateway/pkg/assistant"
)

// MemoryStore keeps the envelope in process memory. State survives across
// reconciler instances within one process but not across restarts; it backs
// tests and ephemeral runs.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

func (s *MemoryStore) Save(env *assistant.Envelope) {
	s.cache.Set(StorageKey, env, cache.NoExpiration)
}

func (s *MemoryStore) Load() (*assistant.Envelope, bool) {
	if x, found := s.cache.Get(StorageKey); found {
		return x.(*assistant.Envelope), true
	}
	return nil, false
}
