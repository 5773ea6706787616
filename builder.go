package acauth

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/realmkit/acauth/email"
	"github.com/realmkit/acauth/internal/rate"
	"github.com/realmkit/acauth/jwt"
)

// Builder assembles an Engine. The account store is the only mandatory
// collaborator; everything else has an in-process or no-op default.
type Builder struct {
	config Config
	log    *zap.Logger
	redis  *redis.Client

	accounts     AccountStore
	totpStore    TOTPStore
	captchaStore CaptchaStore
	tokenStore   TokenStore
	mail         email.Sender

	built bool
}

// New returns a Builder loaded with defaults.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLogger sets the engine logger. Defaults to zap.NewNop().
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// WithRedis provides a shared Redis client for rate counters, captcha
// challenges, and single-use tokens. Without it those stores run in
// process.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAccountStore sets the mandatory account persistence.
func (b *Builder) WithAccountStore(s AccountStore) *Builder {
	b.accounts = s
	return b
}

// WithTOTPStore overrides TOTP secret persistence.
func (b *Builder) WithTOTPStore(s TOTPStore) *Builder {
	b.totpStore = s
	return b
}

// WithCaptchaStore overrides challenge persistence.
func (b *Builder) WithCaptchaStore(s CaptchaStore) *Builder {
	b.captchaStore = s
	return b
}

// WithTokenStore overrides single-use token persistence.
func (b *Builder) WithTokenStore(s TokenStore) *Builder {
	b.tokenStore = s
	return b
}

// WithMailSender overrides outbound mail delivery.
func (b *Builder) WithMailSender(s email.Sender) *Builder {
	b.mail = s
	return b
}

// WithMetricsEnabled toggles the flow counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires defaults for every collaborator
// not provided, probes the rate limiter's Redis once, and returns the
// ready Engine. A Builder builds at most one Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.accounts == nil {
		return nil, errors.New("account store required")
	}
	if b.totpStore == nil {
		return nil, errors.New("totp store required")
	}

	log := b.log
	if log == nil {
		log = zap.NewNop()
	}

	engine := &Engine{
		config:    cfg,
		log:       log,
		accounts:  b.accounts,
		totpStore: b.totpStore,
		totp:      newTOTPManager(cfg.TOTP),
		captcha:   newCaptchaGenerator(cfg.Captcha),
		metrics:   NewMetrics(cfg.Metrics),
	}

	engine.captchaStore = b.captchaStore
	engine.tokenStore = b.tokenStore
	if b.redis != nil {
		if engine.captchaStore == nil {
			engine.captchaStore = NewRedisCaptchaStore(b.redis)
		}
		if engine.tokenStore == nil {
			engine.tokenStore = NewRedisTokenStore(b.redis)
		}
	}
	if engine.captchaStore == nil {
		engine.captchaStore = NewMemoryCaptchaStore()
	}
	if engine.tokenStore == nil {
		engine.tokenStore = NewMemoryTokenStore()
	}

	engine.mail = b.mail
	if engine.mail == nil {
		if cfg.Mail.Host != "" {
			sender, err := email.NewSMTPSender(email.Config{
				Host:     cfg.Mail.Host,
				Port:     cfg.Mail.Port,
				Username: cfg.Mail.Username,
				Password: cfg.Mail.Password,
				From:     cfg.Mail.From,
			})
			if err != nil {
				return nil, err
			}
			engine.mail = sender
		} else {
			engine.mail = email.NopSender{}
		}
	}

	limiter, err := buildLimiter(cfg.RateLimit, b.redis, log)
	if err != nil {
		return nil, err
	}
	engine.limiter = limiter

	jm, err := jwt.NewManager(jwt.Config{
		Secret: cloneBytes(cfg.JWT.Secret),
		TTL:    cfg.JWT.TTL,
	})
	if err != nil {
		return nil, err
	}
	engine.jwtManager = jm

	b.built = true
	return engine, nil
}

// buildLimiter parses the route policies and picks the counter store. The
// shared store is probed exactly once here; a failed probe degrades to
// in-process counters with a warning instead of failing the build.
func buildLimiter(cfg RateLimitConfig, shared *redis.Client, log *zap.Logger) (*rate.Limiter, error) {
	rateCfg := rate.Config{
		Enabled:   cfg.Enabled,
		KeyPrefix: cfg.KeyPrefix,
		Policies:  make(map[rate.Route]rate.Policy),
	}

	if cfg.Enabled {
		def, err := rate.ParsePolicy(cfg.Default)
		if err != nil {
			return nil, err
		}
		rateCfg.Default = def

		for route, raw := range map[rate.Route]string{
			rate.RouteLogin:                cfg.Login,
			rate.RouteRegister:             cfg.Register,
			rate.RoutePasswordResetRequest: cfg.PasswordResetRequest,
			rate.RoutePasswordResetConfirm: cfg.PasswordResetConfirm,
			rate.RouteEmailVerifyConfirm:   cfg.EmailVerifyConfirm,
			rate.RouteTOTPSetup:            cfg.TOTPSetup,
			rate.RouteTOTPToggle:           cfg.TOTPToggle,
			rate.RouteCaptchaGenerate:      cfg.CaptchaGenerate,
		} {
			if raw == "" {
				continue
			}
			p, err := rate.ParsePolicy(raw)
			if err != nil {
				return nil, err
			}
			rateCfg.Policies[route] = p
		}
	}

	client := shared
	if client == nil && cfg.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	var store rate.Store
	if client != nil {
		if err := rate.Probe(client, cfg.ProbeTimeout); err != nil {
			log.Warn("rate limiter redis unreachable, using in-process counters", zap.Error(err))
			store = rate.NewMemoryStore()
		} else {
			store = rate.NewRedisStore(client)
		}
	} else {
		store = rate.NewMemoryStore()
	}

	return rate.New(store, rateCfg, log.Named("rate")), nil
}
