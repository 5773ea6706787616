package acauth

import (
	"context"
	"errors"

	"github.com/realmkit/acauth/internal/rate"
	"github.com/realmkit/acauth/password"
)

// Login authenticates username/pass and, when the account has an active
// second factor, totpCode. Every credential failure collapses to
// ErrInvalidCredentials; a locked account is the one condition reported
// distinctly, since only its owner can reach that check.
func (e *Engine) Login(ctx context.Context, username, pass, totpCode string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteLogin); err != nil {
		return nil, err
	}

	canonical, err := normalizeUsername(username)
	if err != nil {
		// A name that cannot exist is just a bad credential.
		e.metrics.Inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	acct, err := e.accounts.FindByUsername(ctx, canonical)
	if err != nil {
		if isNotFound(err) {
			e.metrics.Inc(MetricLoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(pass, canonical, acct.Digest) {
		e.metrics.Inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	if acct.Locked {
		e.metrics.Inc(MetricLoginLocked)
		return nil, ErrAccountLocked
	}

	if err := e.checkSecondFactor(ctx, acct.ID, totpCode); err != nil {
		return nil, err
	}

	token, err := e.jwtManager.Issue(acct.Username)
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(MetricLoginSuccess)
	return &LoginResult{AccessToken: token, TokenType: "bearer"}, nil
}

// checkSecondFactor enforces TOTP when an active secret exists. Accounts
// without a secret, or with one still pending or deactivated, pass through.
func (e *Engine) checkSecondFactor(ctx context.Context, accountID int64, code string) error {
	sec, err := e.totpStore.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrTOTPNotConfigured) {
			return nil
		}
		return err
	}
	if !sec.Active {
		return nil
	}

	if code == "" {
		e.metrics.Inc(MetricTOTPRequired)
		return ErrTOTPRequired
	}

	ok, err := e.totp.VerifyCode(sec.Secret, code, timeNow())
	if err != nil {
		return err
	}
	if !ok {
		e.metrics.Inc(MetricTOTPFailure)
		return ErrInvalidCredentials
	}
	e.metrics.Inc(MetricTOTPSuccess)
	return nil
}

// Authenticate resolves a bearer token to its account. Used by the routing
// layer for read-self and as the session gate for authenticated flows.
func (e *Engine) Authenticate(ctx context.Context, token string) (*Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteDefault); err != nil {
		return nil, err
	}
	return e.authenticate(ctx, token)
}

// authenticate is the unguarded token check shared by flows that already
// ran their own route guard.
func (e *Engine) authenticate(ctx context.Context, token string) (*Account, error) {
	subject, err := e.jwtManager.Verify(token)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	// The subject is the canonical username the token was issued for.
	acct, err := e.accounts.FindByUsername(ctx, subject)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	if acct.Locked {
		return nil, ErrAccountLocked
	}
	return acct, nil
}
