package acauth

import "errors"

var (
	// ErrInvalidCredentials covers every bad username/password/TOTP-code
	// combination. It is deliberately generic so callers cannot distinguish
	// "no such account" from "wrong password" from "wrong code".
	ErrInvalidCredentials = errors.New("incorrect credentials")
	// ErrAccountLocked is returned for locked accounts. Unlike credential
	// failures it confirms the account exists, which is acceptable because
	// only the owner reaches this state.
	ErrAccountLocked = errors.New("account locked")
	// ErrDuplicateUsername is an error value returned by the registration flow.
	ErrDuplicateUsername = errors.New("username already registered")
	// ErrDuplicateEmail is an error value returned by the registration flow.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidUsername rejects usernames outside 3-16 alnum/underscore chars.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword rejects empty or over-long passwords.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidEmail rejects addresses that do not parse as a bare RFC 5322
	// address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidCaptcha covers missing, expired, and wrong-answer challenges.
	ErrInvalidCaptcha = errors.New("invalid captcha")
	// ErrInvalidOrExpiredToken covers session, reset, and verification tokens.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrTOTPRequired signals that login needs a second-factor code.
	ErrTOTPRequired = errors.New("totp code required")
	// ErrTOTPAlreadyActive rejects setup while a secret is active.
	ErrTOTPAlreadyActive = errors.New("totp already active")
	// ErrTOTPNotConfigured rejects enable before any setup was performed.
	ErrTOTPNotConfigured = errors.New("totp not configured")
	// ErrTOTPNotActive rejects disable when no active secret exists.
	ErrTOTPNotActive = errors.New("totp not active")
	// ErrRateLimitExceeded is returned before any flow logic runs.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrStoreUnavailable surfaces persistence failures in flows that cannot
	// degrade. The rate limiter never returns it; it degrades instead.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEngineNotReady is returned when a nil or unbuilt engine is used.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrAccountNotFound is returned by store lookups for missing rows. The
	// engine never leaks it to callers of security-sensitive flows; it maps
	// to ErrInvalidCredentials or a silent no-op instead.
	ErrAccountNotFound = errors.New("account not found")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail)
}
