package rate

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts hits in a sorted set per key, scored by hit time. The
// set is pruned to the trailing window on every hit, which gives true
// moving-window semantics shared across processes.
type RedisStore struct {
	redis redis.UniversalClient
	seq   atomic.Uint64
}

// NewRedisStore wraps client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{redis: client}
}

// Probe checks the client is reachable within timeout. Called once at
// startup; per-request probing would amplify latency on a dead store.
func Probe(client redis.UniversalClient, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Ping(ctx).Err()
}

// Allow records the hit and counts the window in one transaction. Rejected
// hits still count, matching the usual moving-window semantics.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	nano := now.UnixNano()
	cutoff := nano - window.Nanoseconds()
	// seq disambiguates hits landing on the same nanosecond.
	member := strconv.FormatInt(nano, 10) + "-" + strconv.FormatUint(s.seq.Add(1), 10)

	pipe := s.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(nano), Member: member})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return card.Val() <= int64(limit), nil
}
