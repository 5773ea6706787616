package acauth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix       = "tok"
	tokenRecordVersionV1 = 1
)

// tokenKey derives the storage key from the opaque token so the raw token
// never touches the store. A stolen store dump cannot be replayed.
func tokenKey(purpose TokenPurpose, token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenKeyPrefix + ":" + string(purpose) + ":" + hex.EncodeToString(sum[:])
}

// RedisTokenStore keeps email-verification and password-reset tokens in
// Redis, keyed by token hash, consumed with GETDEL.
type RedisTokenStore struct {
	redis *redis.Client
}

// NewRedisTokenStore wraps client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{redis: client}
}

// Save stores rec for ttl. The record's ExpiresAt must already be set.
func (s *RedisTokenStore) Save(ctx context.Context, rec *TokenRecord, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("token ttl must be > 0")
	}
	encoded, err := encodeTokenRecord(rec)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, tokenKey(rec.Purpose, rec.Token), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Consume atomically fetches and deletes. Unknown and expired tokens are
// indistinguishable to the caller.
func (s *RedisTokenStore) Consume(ctx context.Context, purpose TokenPurpose, token string) (*TokenRecord, error) {
	data, err := s.redis.GetDel(ctx, tokenKey(purpose, token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	rec, err := decodeTokenRecord(data)
	if err != nil {
		return nil, err
	}
	rec.Purpose = purpose
	rec.Token = token
	return rec, nil
}

func encodeTokenRecord(rec *TokenRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(tokenRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, rec.AccountID); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, rec.ExpiresAt.Unix()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTokenRecord(data []byte) (*TokenRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != tokenRecordVersionV1 {
		return nil, errors.New("invalid token record version")
	}

	rec := &TokenRecord{}
	if err := binary.Read(reader, binary.BigEndian, &rec.AccountID); err != nil {
		return nil, err
	}
	var expires int64
	if err := binary.Read(reader, binary.BigEndian, &expires); err != nil {
		return nil, err
	}
	rec.ExpiresAt = time.Unix(expires, 0)
	return rec, nil
}

// MemoryTokenStore is the in-process TokenStore used when no Redis client
// is provided.
type MemoryTokenStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryTokenStore returns an empty in-process store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Save stores a copy of rec with per-item expiry ttl.
func (s *MemoryTokenStore) Save(ctx context.Context, rec *TokenRecord, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("token ttl must be > 0")
	}
	cp := *rec
	s.mu.Lock()
	s.cache.Set(tokenKey(rec.Purpose, rec.Token), &cp, ttl)
	s.mu.Unlock()
	return nil
}

// Consume fetches and deletes under one lock.
func (s *MemoryTokenStore) Consume(ctx context.Context, purpose TokenPurpose, token string) (*TokenRecord, error) {
	key := tokenKey(purpose, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(key)
	s.cache.Delete(key)
	if !ok {
		return nil, ErrInvalidOrExpiredToken
	}
	rec := v.(*TokenRecord)
	cp := *rec
	return &cp, nil
}
