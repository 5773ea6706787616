package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps per-key hit timestamps in process. It is the fallback
// when the shared store is unreachable and the default when none is
// configured. Idle keys age out of the cache so abandoned clients do not
// accumulate.
type MemoryStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Allow prunes the key's window and records the hit under one lock.
func (s *MemoryStore) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	cutoff := now.UnixNano() - window.Nanoseconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	var times []int64
	if v, ok := s.cache.Get(key); ok {
		times = v.([]int64)
	}

	kept := times[:0]
	for _, t := range times {
		if t > cutoff {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now.UnixNano())

	s.cache.Set(key, kept, 2*window)
	return len(kept) <= limit, nil
}
