package acauth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Config carries every tunable of the engine. Build deep-copies it, so a
// Config is safe to reuse and mutate after Build returns.
type Config struct {
	JWT       JWTConfig
	TOTP      TOTPConfig
	Captcha   CaptchaConfig
	RateLimit RateLimitConfig
	Tokens    TokenConfig
	Mail      MailConfig
	Metrics   MetricsConfig
}

// JWTConfig configures session token issuance.
type JWTConfig struct {
	Secret []byte
	TTL    time.Duration
}

// TOTPConfig configures the second factor. Algorithm is SHA1, SHA256, or
// SHA512; authenticator apps almost universally expect SHA1.
type TOTPConfig struct {
	Issuer    string
	Digits    int
	Period    int // seconds per time step
	Skew      int // accepted steps either side of now
	Algorithm string
}

// CaptchaConfig configures challenge generation. SweepChance is the inverse
// probability of an opportunistic expired-row sweep per Generate call; 20
// means roughly one sweep per twenty generations. Zero disables sweeping.
type CaptchaConfig struct {
	TTL         time.Duration
	SweepChance int
}

// RateLimitConfig configures per-route throttling. Policies are strings of
// the form "N/second", "N/minute", "N/hour", or "N/day". Each route class
// counts independently per client key.
//
// When Enabled is false every request is admitted through the same code
// path, so flipping the flag later needs no wiring change. RedisAddr names
// the shared counter store; it is probed once at Build with ProbeTimeout and
// the limiter degrades to in-process counters if the probe fails.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ProbeTimeout  time.Duration
	KeyPrefix     string

	Default              string
	Login                string
	Register             string
	PasswordResetRequest string
	PasswordResetConfirm string
	EmailVerifyConfirm   string
	TOTPSetup            string
	TOTPToggle           string
	CaptchaGenerate      string
}

// TokenConfig configures single-use token lifetimes.
type TokenConfig struct {
	EmailVerificationTTL time.Duration
	PasswordResetTTL     time.Duration
	// VerifyURLBase and ResetURLBase are the frontend link prefixes embedded
	// in outbound mail; the token is appended as a query parameter.
	VerifyURLBase string
	ResetURLBase  string
}

// MailConfig configures the outbound SMTP sender. An empty Host means mail
// is unconfigured: flows that send mail skip the step instead of failing.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			TTL: 1440 * time.Minute,
		},
		TOTP: TOTPConfig{
			Issuer:    "acauth",
			Digits:    6,
			Period:    30,
			Skew:      1,
			Algorithm: "SHA1",
		},
		Captcha: CaptchaConfig{
			TTL:         300 * time.Second,
			SweepChance: 20,
		},
		RateLimit: RateLimitConfig{
			Enabled:      true,
			ProbeTimeout: time.Second,
			KeyPrefix:    "rl",

			Default:              "60/minute",
			Login:                "5/minute",
			Register:             "3/hour",
			PasswordResetRequest: "3/hour",
			PasswordResetConfirm: "5/hour",
			EmailVerifyConfirm:   "10/hour",
			TOTPSetup:            "5/hour",
			TOTPToggle:           "10/hour",
			CaptchaGenerate:      "10/minute",
		},
		Tokens: TokenConfig{
			EmailVerificationTTL: 24 * time.Hour,
			PasswordResetTTL:     time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var policyPattern = regexp.MustCompile(`^[1-9][0-9]*/(second|minute|hour|day)$`)

// Validate checks every config invariant and returns the first violation.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT Secret must be at least 32 bytes")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT TTL must be > 0")
	}

	if c.TOTP.Issuer == "" {
		return errors.New("TOTP Issuer is required")
	}
	if c.TOTP.Digits != 6 && c.TOTP.Digits != 8 {
		return errors.New("TOTP Digits must be 6 or 8")
	}
	if c.TOTP.Period < 15 {
		return errors.New("TOTP Period must be >= 15 seconds")
	}
	if c.TOTP.Skew < 0 {
		return errors.New("TOTP Skew must be >= 0")
	}
	switch strings.ToUpper(c.TOTP.Algorithm) {
	case "", "SHA1", "SHA256", "SHA512":
	default:
		return errors.New("TOTP Algorithm must be SHA1, SHA256, or SHA512")
	}

	if c.Captcha.TTL <= 0 {
		return errors.New("Captcha TTL must be > 0")
	}
	if c.Captcha.SweepChance < 0 {
		return errors.New("Captcha SweepChance must be >= 0")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.ProbeTimeout <= 0 {
			return errors.New("RateLimit ProbeTimeout must be > 0")
		}
		for name, policy := range map[string]string{
			"Default":              c.RateLimit.Default,
			"Login":                c.RateLimit.Login,
			"Register":             c.RateLimit.Register,
			"PasswordResetRequest": c.RateLimit.PasswordResetRequest,
			"PasswordResetConfirm": c.RateLimit.PasswordResetConfirm,
			"EmailVerifyConfirm":   c.RateLimit.EmailVerifyConfirm,
			"TOTPSetup":            c.RateLimit.TOTPSetup,
			"TOTPToggle":           c.RateLimit.TOTPToggle,
			"CaptchaGenerate":      c.RateLimit.CaptchaGenerate,
		} {
			if policy == "" {
				continue // falls back to Default at build time
			}
			if !policyPattern.MatchString(policy) {
				return fmt.Errorf("RateLimit %s policy %q is not of the form N/period", name, policy)
			}
		}
		if c.RateLimit.Default == "" {
			return errors.New("RateLimit Default policy is required when enabled")
		}
	}

	if c.Tokens.EmailVerificationTTL <= 0 {
		return errors.New("Tokens EmailVerificationTTL must be > 0")
	}
	if c.Tokens.PasswordResetTTL <= 0 {
		return errors.New("Tokens PasswordResetTTL must be > 0")
	}

	if c.Mail.Host != "" {
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			return errors.New("Mail Port must be a valid TCP port")
		}
		if c.Mail.From == "" {
			return errors.New("Mail From is required when Mail Host is set")
		}
	}

	return nil
}
