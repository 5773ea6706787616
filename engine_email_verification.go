package acauth

import (
	"context"

	"github.com/realmkit/acauth/internal/rate"
)

// ConfirmEmailVerification consumes a verification token and marks the
// account's email verified. Expired tokens are rejected and, having been
// consumed, are gone for good.
func (e *Engine) ConfirmEmailVerification(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteEmailVerifyConfirm); err != nil {
		return err
	}

	rec, err := e.tokenStore.Consume(ctx, TokenPurposeEmailVerification, token)
	if err != nil {
		e.metrics.Inc(MetricEmailVerifyFailure)
		return err
	}
	if timeNow().After(rec.ExpiresAt) {
		e.metrics.Inc(MetricEmailVerifyFailure)
		return ErrInvalidOrExpiredToken
	}

	if err := e.accounts.SetVerified(ctx, rec.AccountID, true); err != nil {
		e.metrics.Inc(MetricEmailVerifyFailure)
		if isNotFound(err) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	e.metrics.Inc(MetricEmailVerifySuccess)
	return nil
}
