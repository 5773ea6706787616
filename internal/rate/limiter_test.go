package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in     string
		limit  int
		window time.Duration
		ok     bool
	}{
		{"5/minute", 5, time.Minute, true},
		{"1/second", 1, time.Second, true},
		{"100/hour", 100, time.Hour, true},
		{"2/day", 2, 24 * time.Hour, true},
		{"0/minute", 0, 0, false},
		{"-1/minute", 0, 0, false},
		{"5/fortnight", 0, 0, false},
		{"minute", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tc := range cases {
		p, err := ParsePolicy(tc.in)
		if tc.ok != (err == nil) {
			t.Fatalf("ParsePolicy(%q): err = %v, want ok=%v", tc.in, err, tc.ok)
		}
		if tc.ok && (p.Limit != tc.limit || p.Window != tc.window) {
			t.Fatalf("ParsePolicy(%q) = %+v", tc.in, p)
		}
	}
}

func newTestLimiter(store Store, enabled bool, now func() time.Time) *Limiter {
	l := New(store, Config{
		Enabled:   enabled,
		KeyPrefix: "rl",
		Default:   Policy{Limit: 100, Window: time.Minute},
		Policies: map[Route]Policy{
			RouteLogin: {Limit: 5, Window: time.Minute},
		},
	}, zap.NewNop())
	if now != nil {
		l.now = now
	}
	return l
}

func TestMemoryStoreFivePerMinute(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	l := newTestLimiter(NewMemoryStore(), true, func() time.Time { return clock })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		clock = clock.Add(time.Second)
		if err := l.Allow(ctx, RouteLogin, "1.2.3.4"); err != nil {
			t.Fatalf("request %d unexpectedly limited: %v", i+1, err)
		}
	}

	clock = clock.Add(time.Second)
	if err := l.Allow(ctx, RouteLogin, "1.2.3.4"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("6th request: expected ErrRateLimited, got %v", err)
	}

	// Roll the window past the first five hits.
	clock = clock.Add(2 * time.Minute)
	if err := l.Allow(ctx, RouteLogin, "1.2.3.4"); err != nil {
		t.Fatalf("post-roll request limited: %v", err)
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	l := newTestLimiter(NewMemoryStore(), true, func() time.Time { return clock })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := l.Allow(ctx, RouteLogin, "1.2.3.4"); err != nil {
			t.Fatalf("unexpected limit: %v", err)
		}
	}
	if err := l.Allow(ctx, RouteLogin, "5.6.7.8"); err != nil {
		t.Fatalf("other client limited: %v", err)
	}
	// Same client on a different route counts separately too.
	if err := l.Allow(ctx, RouteRegister, "1.2.3.4"); err != nil {
		t.Fatalf("other route limited: %v", err)
	}
}

func TestRedisStoreFivePerMinute(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	clock := time.Unix(1700000000, 0)
	l := newTestLimiter(NewRedisStore(client), true, func() time.Time { return clock })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		clock = clock.Add(time.Second)
		if err := l.Allow(ctx, RouteLogin, "1.2.3.4"); err != nil {
			t.Fatalf("request %d unexpectedly limited: %v", i+1, err)
		}
	}

	clock = clock.Add(time.Second)
	if err := l.Allow(ctx, RouteLogin, "1.2.3.4"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("6th request: expected ErrRateLimited, got %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	if err := l.Allow(ctx, RouteLogin, "1.2.3.4"); err != nil {
		t.Fatalf("post-roll request limited: %v", err)
	}
}

func TestDisabledLimiterAdmitsEverything(t *testing.T) {
	l := newTestLimiter(NewMemoryStore(), false, nil)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := l.Allow(ctx, RouteLogin, "1.2.3.4"); err != nil {
			t.Fatalf("disabled limiter rejected request %d: %v", i+1, err)
		}
	}
}

type failingStore struct{}

func (failingStore) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	return false, ErrStoreUnavailable
}

func TestStoreFailureAdmits(t *testing.T) {
	l := newTestLimiter(failingStore{}, true, nil)

	if err := l.Allow(context.Background(), RouteLogin, "1.2.3.4"); err != nil {
		t.Fatalf("expected fail-open admit, got %v", err)
	}
}

func TestProbeUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	if err := Probe(client, 100*time.Millisecond); err == nil {
		t.Fatal("expected probe failure against closed port")
	}
}

func TestProbeReachable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := Probe(client, time.Second); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
}
