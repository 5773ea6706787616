package acauth

import (
	"context"
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCaptchaStore keeps pending challenges in process. Used as the
// default store and as the fallback when no Redis client is provided. The
// mutex exists because the underlying cache has no atomic get-and-delete.
type MemoryCaptchaStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryCaptchaStore returns an empty in-process store. Expired entries
// are reaped lazily on Consume and by SweepExpired; no janitor goroutine
// runs.
func NewMemoryCaptchaStore() *MemoryCaptchaStore {
	return &MemoryCaptchaStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Save stores ch under its ID with the cache's per-item expiry set to
// ExpiresAt.
func (s *MemoryCaptchaStore) Save(ctx context.Context, ch *CaptchaChallenge) error {
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		return errors.New("challenge already expired")
	}
	cp := *ch
	s.mu.Lock()
	s.cache.Set(ch.ID, &cp, ttl)
	s.mu.Unlock()
	return nil
}

// Consume fetches and deletes under one lock. Expired entries are treated
// as missing, matching the Redis store's TTL behavior.
func (s *MemoryCaptchaStore) Consume(ctx context.Context, id string) (*CaptchaChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(id)
	s.cache.Delete(id)
	if !ok {
		return nil, ErrInvalidCaptcha
	}
	ch := v.(*CaptchaChallenge)
	cp := *ch
	return &cp, nil
}

// SweepExpired drops expired entries and reports how many were removed.
func (s *MemoryCaptchaStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.cache.ItemCount()
	s.cache.DeleteExpired()
	return before - s.cache.ItemCount(), nil
}
