// Package jwt issues and verifies the HS256 session tokens handed to API
// clients. Tokens are purely cryptographic: there is no server-side session
// row, so a token stays valid until its exp claim passes or the signing
// secret rotates.
package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned for structurally valid tokens past their exp.
	ErrExpired = errors.New("token expired")
	// ErrInvalidSignature is returned when the signature does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMalformed covers everything that is not a well-formed JWT.
	ErrMalformed = errors.New("malformed token")
)

// Config configures a Manager. TimeFunc defaults to time.Now and exists so
// tests can drive expiry with a simulated clock.
type Config struct {
	Secret   []byte
	TTL      time.Duration
	TimeFunc func() time.Time
}

// Manager is safe for concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: secret required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt: ttl must be > 0")
	}
	now := cfg.TimeFunc
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: cfg.Secret, ttl: cfg.TTL, now: now}, nil
}

// Issue signs a token for subject with iat=now and exp=now+ttl.
func (m *Manager) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("jwt: empty subject")
	}
	now := m.now()
	claims := jwtlib.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(m.ttl)),
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks signature and expiry and returns the subject. Errors map to
// the three sentinels above; no raw parser error escapes.
func (m *Manager) Verify(token string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(
		token,
		&jwtlib.RegisteredClaims{},
		func(t *jwtlib.Token) (any, error) { return m.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		default:
			return "", ErrMalformed
		}
	}
	claims, ok := parsed.Claims.(*jwtlib.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}
