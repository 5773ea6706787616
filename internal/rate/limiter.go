// Package rate throttles requests per (client key, route) with a moving
// time window. Counters live in a pluggable Store: shared Redis counters
// for multi-process deployments, in-process counters otherwise.
package rate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrRateLimited is returned when a key exhausted its route policy.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable wraps backing-store failures. Callers never see
	// it from Allow; the limiter degrades to admit instead.
	ErrStoreUnavailable = errors.New("rate store unavailable")
)

// Route names a policy class. Each route counts independently.
type Route string

const (
	RouteDefault              Route = "default"
	RouteLogin                Route = "login"
	RouteRegister             Route = "register"
	RoutePasswordResetRequest Route = "pw-reset-request"
	RoutePasswordResetConfirm Route = "pw-reset-confirm"
	RouteEmailVerifyConfirm   Route = "email-verify"
	RouteTOTPSetup            Route = "totp-setup"
	RouteTOTPToggle           Route = "totp-toggle"
	RouteCaptchaGenerate      Route = "captcha"
)

// Policy is a parsed "N/period" quota.
type Policy struct {
	Limit  int
	Window time.Duration
}

// unlimitedPolicy stands in for every route when limiting is disabled, so
// disabled traffic still flows through the counting path.
var unlimitedPolicy = Policy{Limit: 10000, Window: time.Second}

// ParsePolicy parses "N/second|minute|hour|day".
func ParsePolicy(s string) (Policy, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return Policy{}, fmt.Errorf("policy %q is not of the form N/period", s)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return Policy{}, fmt.Errorf("policy %q has an invalid count", s)
	}
	var window time.Duration
	switch parts[1] {
	case "second":
		window = time.Second
	case "minute":
		window = time.Minute
	case "hour":
		window = time.Hour
	case "day":
		window = 24 * time.Hour
	default:
		return Policy{}, fmt.Errorf("policy %q has an unknown period", s)
	}
	return Policy{Limit: n, Window: window}, nil
}

// Store counts one hit against key and reports whether the hit is within
// limit for the trailing window ending at now. Implementations must be
// atomic per key.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error)
}

// Config holds the limiter wiring. Policies missing a route fall back to
// Default.
type Config struct {
	Enabled   bool
	KeyPrefix string
	Default   Policy
	Policies  map[Route]Policy
}

// Limiter is safe for concurrent use.
type Limiter struct {
	store  Store
	config Config
	log    *zap.Logger
	now    func() time.Time
}

// New creates a Limiter on top of store. log must be non-nil; pass
// zap.NewNop() to silence it.
func New(store Store, cfg Config, log *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		config: cfg,
		log:    log,
		now:    time.Now,
	}
}

// Allow counts one hit for clientKey on route. It returns ErrRateLimited
// when the policy is exhausted and nil otherwise. Store failures admit the
// request and log, so a dead counter store slows nobody down.
func (l *Limiter) Allow(ctx context.Context, route Route, clientKey string) error {
	policy := l.policyFor(route)
	key := l.config.KeyPrefix + ":" + string(route) + ":" + clientKey

	ok, err := l.store.Allow(ctx, key, policy.Limit, policy.Window, l.now())
	if err != nil {
		l.log.Warn("rate store failure, admitting request",
			zap.String("route", string(route)),
			zap.Error(err),
		)
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) policyFor(route Route) Policy {
	if !l.config.Enabled {
		return unlimitedPolicy
	}
	if p, ok := l.config.Policies[route]; ok {
		return p
	}
	return l.config.Default
}
