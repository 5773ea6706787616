package acauth

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	captchaKeyPrefix       = "cap"
	captchaRecordVersionV1 = 1
)

// RedisCaptchaStore keeps pending challenges in Redis with a TTL matching
// challenge expiry. Consume uses GETDEL so concurrent validations of the
// same ID resolve to a single winner.
type RedisCaptchaStore struct {
	redis *redis.Client
}

// NewRedisCaptchaStore wraps client. The client's lifecycle stays with the
// caller.
func NewRedisCaptchaStore(client *redis.Client) *RedisCaptchaStore {
	return &RedisCaptchaStore{redis: client}
}

func (s *RedisCaptchaStore) key(id string) string {
	return captchaKeyPrefix + ":" + id
}

// Save stores ch under its ID with a TTL running to ExpiresAt.
func (s *RedisCaptchaStore) Save(ctx context.Context, ch *CaptchaChallenge) error {
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		return errors.New("challenge already expired")
	}
	encoded, err := encodeCaptchaRecord(ch)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(ch.ID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Consume atomically fetches and deletes the challenge. Unknown, already
// consumed, and TTL-expired IDs all come back as ErrInvalidCaptcha.
func (s *RedisCaptchaStore) Consume(ctx context.Context, id string) (*CaptchaChallenge, error) {
	data, err := s.redis.GetDel(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidCaptcha
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	ch, err := decodeCaptchaRecord(data)
	if err != nil {
		return nil, err
	}
	ch.ID = id
	return ch, nil
}

// SweepExpired is a no-op for Redis: per-key TTLs already reap expired
// challenges server-side.
func (s *RedisCaptchaStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func encodeCaptchaRecord(ch *CaptchaChallenge) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(captchaRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, ch.CreatedAt.Unix()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, ch.ExpiresAt.Unix()); err != nil {
		return nil, err
	}

	for _, field := range []string{ch.Question, ch.Answer} {
		if len(field) > 65535 {
			return nil, errors.New("captcha field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeCaptchaRecord(data []byte) (*CaptchaChallenge, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != captchaRecordVersionV1 {
		return nil, errors.New("invalid captcha record version")
	}

	var created, expires int64
	if err := binary.Read(reader, binary.BigEndian, &created); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &expires); err != nil {
		return nil, err
	}

	fields := make([]string, 2)
	for i := range fields {
		var n uint16
		if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		fields[i] = string(raw)
	}

	return &CaptchaChallenge{
		Question:  fields[0],
		Answer:    fields[1],
		CreatedAt: time.Unix(created, 0),
		ExpiresAt: time.Unix(expires, 0),
	}, nil
}
