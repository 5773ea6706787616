package acauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCaptchaStoreConsumeOnce(t *testing.T) {
	store := NewRedisCaptchaStore(newTestRedis(t))
	ctx := context.Background()

	ch := &CaptchaChallenge{
		ID:        "c1",
		Question:  "What is 3 * 4?",
		Answer:    "12",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := store.Save(ctx, ch); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Consume(ctx, "c1")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got.Answer != "12" || got.Question != ch.Question {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, err := store.Consume(ctx, "c1"); !errors.Is(err, ErrInvalidCaptcha) {
		t.Fatalf("second Consume: expected ErrInvalidCaptcha, got %v", err)
	}
}

func TestRedisCaptchaStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisCaptchaStore(client)
	ctx := context.Background()

	ch := &CaptchaChallenge{
		ID:        "c1",
		Question:  "What is 1 + 2?",
		Answer:    "3",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := store.Save(ctx, ch); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Consume(ctx, "c1"); !errors.Is(err, ErrInvalidCaptcha) {
		t.Fatalf("expected expired challenge rejected, got %v", err)
	}
}

func TestRedisTokenStoreConsumeOnce(t *testing.T) {
	store := NewRedisTokenStore(newTestRedis(t))
	ctx := context.Background()

	rec := &TokenRecord{
		Purpose:   TokenPurposePasswordReset,
		Token:     "opaque-value",
		AccountID: 7,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Save(ctx, rec, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Consume(ctx, TokenPurposePasswordReset, "opaque-value")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got.AccountID != 7 {
		t.Fatalf("account = %d, want 7", got.AccountID)
	}

	if _, err := store.Consume(ctx, TokenPurposePasswordReset, "opaque-value"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("second Consume: expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestRedisTokenStorePurposeIsolation(t *testing.T) {
	store := NewRedisTokenStore(newTestRedis(t))
	ctx := context.Background()

	rec := &TokenRecord{
		Purpose:   TokenPurposeEmailVerification,
		Token:     "opaque-value",
		AccountID: 7,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Save(ctx, rec, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A verification token must not confirm a password reset.
	if _, err := store.Consume(ctx, TokenPurposePasswordReset, "opaque-value"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("cross-purpose Consume: expected ErrInvalidOrExpiredToken, got %v", err)
	}
	if _, err := store.Consume(ctx, TokenPurposeEmailVerification, "opaque-value"); err != nil {
		t.Fatalf("same-purpose Consume failed: %v", err)
	}
}

func TestRedisTokenStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisTokenStore(client)
	ctx := context.Background()

	rec := &TokenRecord{
		Purpose:   TokenPurposePasswordReset,
		Token:     "opaque-value",
		AccountID: 7,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := store.Save(ctx, rec, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Consume(ctx, TokenPurposePasswordReset, "opaque-value"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestMemoryTokenStoreConsumeOnce(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	rec := &TokenRecord{
		Purpose:   TokenPurposeEmailVerification,
		Token:     "tok",
		AccountID: 3,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Save(ctx, rec, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Consume(ctx, TokenPurposeEmailVerification, "tok")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got.AccountID != 3 {
		t.Fatalf("account = %d, want 3", got.AccountID)
	}

	if _, err := store.Consume(ctx, TokenPurposeEmailVerification, "tok"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("second Consume: expected ErrInvalidOrExpiredToken, got %v", err)
	}
}
