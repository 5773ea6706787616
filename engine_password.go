package acauth

import (
	"context"

	"go.uber.org/zap"

	"github.com/realmkit/acauth/email"
	"github.com/realmkit/acauth/internal"
	"github.com/realmkit/acauth/internal/rate"
	"github.com/realmkit/acauth/password"
)

// ChangePassword verifies the caller's session and current password, then
// persists the digest of the new one.
func (e *Engine) ChangePassword(ctx context.Context, sessionToken, currentPassword, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteDefault); err != nil {
		return err
	}

	acct, err := e.authenticate(ctx, sessionToken)
	if err != nil {
		return err
	}

	if !password.Verify(currentPassword, acct.Username, acct.Digest) {
		e.metrics.Inc(MetricPasswordChangeInvalidOld)
		return ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	if err := e.accounts.UpdateDigest(ctx, acct.ID, password.Hash(newPassword, acct.Username)); err != nil {
		return err
	}
	e.metrics.Inc(MetricPasswordChangeSuccess)
	return nil
}

// RequestPasswordReset mints a single-use reset token for the named account
// and mails it. The flow is CAPTCHA-gated and deliberately silent about
// whether the account exists: every outcome past the CAPTCHA is success.
func (e *Engine) RequestPasswordReset(ctx context.Context, username, captchaID, captchaAnswer string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RoutePasswordResetRequest); err != nil {
		return err
	}

	if err := e.validateCaptcha(ctx, captchaID, captchaAnswer); err != nil {
		return err
	}
	e.metrics.Inc(MetricPasswordResetRequest)

	canonical, err := normalizeUsername(username)
	if err != nil {
		return nil
	}
	acct, err := e.accounts.FindByUsername(ctx, canonical)
	if err != nil {
		if !isNotFound(err) {
			e.log.Warn("reset request lookup failed", zap.Error(err))
		}
		return nil
	}

	token, err := internal.NewOpaqueToken()
	if err != nil {
		e.log.Warn("reset token generation failed", zap.Error(err))
		return nil
	}
	rec := &TokenRecord{
		Purpose:   TokenPurposePasswordReset,
		Token:     token,
		AccountID: acct.ID,
		ExpiresAt: timeNow().Add(e.config.Tokens.PasswordResetTTL),
	}
	if err := e.tokenStore.Save(ctx, rec, e.config.Tokens.PasswordResetTTL); err != nil {
		e.log.Warn("reset token save failed", zap.Error(err))
		return nil
	}

	subject, body := email.ResetMessage(e.config.Tokens.ResetURLBase, token)
	e.sendMail(ctx, acct.Email, subject, body)
	return nil
}

// ConfirmPasswordReset consumes the reset token and installs the new
// password. The token is spent on first use regardless of what follows.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RoutePasswordResetConfirm); err != nil {
		return err
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	rec, err := e.tokenStore.Consume(ctx, TokenPurposePasswordReset, token)
	if err != nil {
		e.metrics.Inc(MetricPasswordResetConfirmFailure)
		return err
	}
	if timeNow().After(rec.ExpiresAt) {
		e.metrics.Inc(MetricPasswordResetConfirmFailure)
		return ErrInvalidOrExpiredToken
	}

	acct, err := e.accounts.FindByID(ctx, rec.AccountID)
	if err != nil {
		e.metrics.Inc(MetricPasswordResetConfirmFailure)
		if isNotFound(err) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	if err := e.accounts.UpdateDigest(ctx, acct.ID, password.Hash(newPassword, acct.Username)); err != nil {
		return err
	}
	e.metrics.Inc(MetricPasswordResetConfirmSuccess)
	return nil
}
