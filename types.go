package acauth

import (
	"context"
	"time"

	internalmetrics "github.com/realmkit/acauth/internal/metrics"
)

// Account is the game-server account row as seen by the core. The
// persistence layer owns the record; the engine only reads it and writes the
// password digest and the verified/locked flags through [AccountStore].
type Account struct {
	ID       int64
	Username string // canonical uppercase form
	Email    string
	Digest   string // legacy SHA1 hex digest, lowercase, 40 chars
	Locked   bool
	Admin    bool
	Verified bool
	JoinDate time.Time
}

// CreateAccountInput is the input for [AccountStore.Create]. Username must
// already be in canonical uppercase and Digest already computed.
type CreateAccountInput struct {
	Username string
	Email    string
	Digest   string
}

// AccountStore is the persistence interface for account rows. Create must
// enforce username and email uniqueness atomically and return
// [ErrDuplicateUsername] or [ErrDuplicateEmail] on conflict, so that two
// concurrent registrations for the same name resolve to exactly one winner.
// Lookup methods return [ErrAccountNotFound] for missing rows.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	Create(ctx context.Context, in CreateAccountInput) (*Account, error)
	UpdateDigest(ctx context.Context, id int64, digest string) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	SetLocked(ctx context.Context, id int64, locked bool) error
}

// TOTPSecret is the per-account second-factor record. At most one exists per
// account. A secret starts inactive after setup and becomes active only once
// the holder has proven possession with a correct code.
type TOTPSecret struct {
	AccountID int64
	Secret    string // base32, no padding
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TOTPStore persists TOTP secrets. Get returns [ErrTOTPNotConfigured] when
// the account has no record. Upsert creates or replaces the record with
// Active=false, forcing re-verification of the new secret.
type TOTPStore interface {
	Get(ctx context.Context, accountID int64) (*TOTPSecret, error)
	Upsert(ctx context.Context, accountID int64, secret string) (*TOTPSecret, error)
	SetActive(ctx context.Context, accountID int64, active bool) error
}

// CaptchaChallenge is a stored challenge/answer pair. A challenge is
// consumed exactly once: the first Validate call removes it whether or not
// the answer matched.
type CaptchaChallenge struct {
	ID        string
	Question  string
	Answer    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CaptchaStore persists pending challenges. Consume must atomically fetch
// and delete so concurrent validations of the same ID yield at most one hit;
// it returns [ErrInvalidCaptcha] when the ID is unknown or already consumed.
type CaptchaStore interface {
	Save(ctx context.Context, ch *CaptchaChallenge) error
	Consume(ctx context.Context, id string) (*CaptchaChallenge, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// CaptchaPrompt is the public half of a challenge, returned to the caller.
type CaptchaPrompt struct {
	ID       string
	Question string
}

// TokenPurpose namespaces single-use tokens in the [TokenStore].
type TokenPurpose string

const (
	// TokenPurposeEmailVerification marks tokens minted at registration.
	TokenPurposeEmailVerification TokenPurpose = "verify"
	// TokenPurposePasswordReset marks tokens minted on reset requests.
	TokenPurposePasswordReset TokenPurpose = "reset"
)

// TokenRecord is a random single-use token bound to an account.
type TokenRecord struct {
	Purpose   TokenPurpose
	Token     string
	AccountID int64
	ExpiresAt time.Time
}

// TokenStore persists email-verification and password-reset tokens. Consume
// must atomically fetch and delete; missing, mismatched, or expired tokens
// yield [ErrInvalidOrExpiredToken].
type TokenStore interface {
	Save(ctx context.Context, rec *TokenRecord, ttl time.Duration) error
	Consume(ctx context.Context, purpose TokenPurpose, token string) (*TokenRecord, error)
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Username      string
	Email         string
	Password      string
	CaptchaID     string
	CaptchaAnswer string
}

// LoginResult is returned by [Engine.Login] on success.
type LoginResult struct {
	AccessToken string
	TokenType   string // always "bearer"
}

// TOTPSetup is returned by [Engine.SetupTOTP]. QRCode is a base64 PNG data
// URI of the provisioning URI, suitable for direct embedding in an <img> tag.
type TOTPSetup struct {
	Secret string
	URI    string
	QRCode string
}

// MetricID identifies a counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

// Metrics holds atomic per-flow counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
