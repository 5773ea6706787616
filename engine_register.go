package acauth

import (
	"context"
	"net/mail"

	"go.uber.org/zap"

	"github.com/realmkit/acauth/email"
	"github.com/realmkit/acauth/internal"
	"github.com/realmkit/acauth/internal/rate"
	"github.com/realmkit/acauth/password"
)

func validateEmail(raw string) error {
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return ErrInvalidEmail
	}
	return nil
}

// Register creates a new account. The CAPTCHA challenge is consumed whether
// or not the rest of the flow succeeds. On success a verification token is
// minted and mailed best-effort; a missing mail relay only skips that step.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteRegister); err != nil {
		return nil, err
	}

	if err := e.validateCaptcha(ctx, req.CaptchaID, req.CaptchaAnswer); err != nil {
		return nil, err
	}

	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}

	// Pre-checks give the caller a precise duplicate error; Create remains
	// the authority under races.
	if _, err := e.accounts.FindByUsername(ctx, username); err == nil {
		e.metrics.Inc(MetricRegisterDuplicate)
		return nil, ErrDuplicateUsername
	} else if !isNotFound(err) {
		return nil, err
	}
	if _, err := e.accounts.FindByEmail(ctx, req.Email); err == nil {
		e.metrics.Inc(MetricRegisterDuplicate)
		return nil, ErrDuplicateEmail
	} else if !isNotFound(err) {
		return nil, err
	}

	acct, err := e.accounts.Create(ctx, CreateAccountInput{
		Username: username,
		Email:    req.Email,
		Digest:   password.Hash(req.Password, username),
	})
	if err != nil {
		if isDuplicate(err) {
			e.metrics.Inc(MetricRegisterDuplicate)
		}
		return nil, err
	}
	e.metrics.Inc(MetricRegisterSuccess)

	e.issueVerificationMail(ctx, acct)
	return acct, nil
}

// issueVerificationMail mints and mails the email-verification token.
// Every failure here is logged and swallowed: the account exists either
// way and the token can be re-issued later.
func (e *Engine) issueVerificationMail(ctx context.Context, acct *Account) {
	token, err := internal.NewOpaqueToken()
	if err != nil {
		e.log.Warn("verification token generation failed", zap.Error(err))
		return
	}
	rec := &TokenRecord{
		Purpose:   TokenPurposeEmailVerification,
		Token:     token,
		AccountID: acct.ID,
		ExpiresAt: timeNow().Add(e.config.Tokens.EmailVerificationTTL),
	}
	if err := e.tokenStore.Save(ctx, rec, e.config.Tokens.EmailVerificationTTL); err != nil {
		e.log.Warn("verification token save failed", zap.Error(err))
		return
	}
	subject, body := email.VerificationMessage(e.config.Tokens.VerifyURLBase, token)
	e.sendMail(ctx, acct.Email, subject, body)
}
