package acauth

import (
	"context"
	"errors"

	"github.com/realmkit/acauth/internal/rate"
)

// SetupTOTP provisions a fresh secret for the caller's account and returns
// it with the otpauth URI and a QR data URI. The secret replaces any
// pending or deactivated one and always starts inactive; it protects
// nothing until EnableTOTP proves the caller's authenticator holds it.
// Setup is rejected while a secret is active.
func (e *Engine) SetupTOTP(ctx context.Context, sessionToken string) (*TOTPSetup, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteTOTPSetup); err != nil {
		return nil, err
	}

	acct, err := e.authenticate(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	existing, err := e.totpStore.Get(ctx, acct.ID)
	if err != nil && !errors.Is(err, ErrTOTPNotConfigured) {
		return nil, err
	}
	if existing != nil && existing.Active {
		return nil, ErrTOTPAlreadyActive
	}

	secret, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	if _, err := e.totpStore.Upsert(ctx, acct.ID, secret); err != nil {
		return nil, err
	}

	uri := e.totp.ProvisionURI(secret, acct.Username)
	qr, err := ChallengeImage(uri)
	if err != nil {
		return nil, err
	}

	return &TOTPSetup{Secret: secret, URI: uri, QRCode: qr}, nil
}

// EnableTOTP activates the pending secret once the caller proves possession
// with a current code. A wrong code leaves the record untouched.
func (e *Engine) EnableTOTP(ctx context.Context, sessionToken, code string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteTOTPToggle); err != nil {
		return err
	}

	acct, err := e.authenticate(ctx, sessionToken)
	if err != nil {
		return err
	}

	sec, err := e.totpStore.Get(ctx, acct.ID)
	if err != nil {
		return err
	}
	if sec.Active {
		return ErrTOTPAlreadyActive
	}

	ok, err := e.totp.VerifyCode(sec.Secret, code, timeNow())
	if err != nil {
		return err
	}
	if !ok {
		e.metrics.Inc(MetricTOTPFailure)
		return ErrInvalidCredentials
	}

	if err := e.totpStore.SetActive(ctx, acct.ID, true); err != nil {
		return err
	}
	e.metrics.Inc(MetricTOTPSuccess)
	return nil
}

// DisableTOTP deactivates the active secret given a correct current code.
// The record is retained inactive; a later SetupTOTP replaces it.
func (e *Engine) DisableTOTP(ctx context.Context, sessionToken, code string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteTOTPToggle); err != nil {
		return err
	}

	acct, err := e.authenticate(ctx, sessionToken)
	if err != nil {
		return err
	}

	sec, err := e.totpStore.Get(ctx, acct.ID)
	if err != nil {
		if errors.Is(err, ErrTOTPNotConfigured) {
			return ErrTOTPNotActive
		}
		return err
	}
	if !sec.Active {
		return ErrTOTPNotActive
	}

	ok, err := e.totp.VerifyCode(sec.Secret, code, timeNow())
	if err != nil {
		return err
	}
	if !ok {
		e.metrics.Inc(MetricTOTPFailure)
		return ErrInvalidCredentials
	}

	if err := e.totpStore.SetActive(ctx, acct.ID, false); err != nil {
		return err
	}
	e.metrics.Inc(MetricTOTPSuccess)
	return nil
}
