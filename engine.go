package acauth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/realmkit/acauth/email"
	"github.com/realmkit/acauth/internal/rate"
	"github.com/realmkit/acauth/jwt"
)

// Engine orchestrates every authentication flow. Build one through
// [Builder]; all methods are safe for concurrent use afterwards.
type Engine struct {
	config Config
	log    *zap.Logger

	accounts     AccountStore
	totpStore    TOTPStore
	captchaStore CaptchaStore
	tokenStore   TokenStore
	mail         email.Sender

	jwtManager *jwt.Manager
	limiter    *rate.Limiter
	totp       *totpManager
	captcha    *captchaGenerator
	metrics    *Metrics
}

// MetricsSnapshot returns a point-in-time copy of the flow counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// timeNow is swapped out by tests that need a fixed clock.
var timeNow = time.Now

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// normalizeUsername validates the raw username and returns the canonical
// uppercase form the account table stores.
func normalizeUsername(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !usernamePattern.MatchString(trimmed) {
		return "", ErrInvalidUsername
	}
	return strings.ToUpper(trimmed), nil
}

const maxPasswordLength = 128

func validatePassword(raw string) error {
	if raw == "" || len(raw) > maxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

// guard runs the rate limiter for route before any flow logic. The limiter
// itself degrades on store failures, so the only error out of here is the
// quota rejection.
func (e *Engine) guard(ctx context.Context, route rate.Route) error {
	if err := e.limiter.Allow(ctx, route, clientIPFromContext(ctx)); err != nil {
		e.metrics.Inc(MetricRateLimitHit)
		return ErrRateLimitExceeded
	}
	return nil
}

// sendMail delivers best-effort: failures are logged and counted, never
// returned. Flows that mail must succeed without a mail relay.
func (e *Engine) sendMail(ctx context.Context, to, subject, body string) {
	if err := e.mail.Send(ctx, to, subject, body); err != nil {
		e.metrics.Inc(MetricMailFailed)
		e.log.Warn("mail delivery failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	e.metrics.Inc(MetricMailSent)
}

// validateCaptcha consumes the challenge and compares the answer after
// trimming, case-insensitively. Consumption happens whether or not the
// answer matches.
func (e *Engine) validateCaptcha(ctx context.Context, id, answer string) error {
	if id == "" {
		e.metrics.Inc(MetricCaptchaFailed)
		return ErrInvalidCaptcha
	}
	ch, err := e.captchaStore.Consume(ctx, id)
	if err != nil {
		e.metrics.Inc(MetricCaptchaFailed)
		return err
	}
	got := strings.ToLower(strings.TrimSpace(answer))
	want := strings.ToLower(strings.TrimSpace(ch.Answer))
	if got != want {
		e.metrics.Inc(MetricCaptchaFailed)
		return ErrInvalidCaptcha
	}
	return nil
}
