package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "tooly"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Commerce CommerceConfig
	Session  SessionConfig
	Payment  PaymentConfig
	Stripe   StripeConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Payment.validate(cfg.Stripe); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TOOLY_APP_ENV" required:"true"`
	Port         string `envconfig:"TOOLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TOOLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TOOLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"TOOLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TOOLY_REDIS_ADDR"`
	Password     string        `envconfig:"TOOLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOOLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOOLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TOOLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TOOLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOOLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TOOLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CommerceConfig addresses the remote order backend's RPC endpoint.
type CommerceConfig struct {
	EndpointURL   string        `envconfig:"TOOLY_COMMERCE_ENDPOINT_URL" required:"true"`
	ChannelToken  string        `envconfig:"TOOLY_COMMERCE_CHANNEL_TOKEN"`
	SessionCookie string        `envconfig:"TOOLY_COMMERCE_SESSION_COOKIE" default:"session"`
	RPCTimeout    time.Duration `envconfig:"TOOLY_COMMERCE_RPC_TIMEOUT" default:"15s"`
	MaxBodyBytes  int64         `envconfig:"TOOLY_COMMERCE_MAX_BODY_BYTES" default:"1048576"`
}

type SessionConfig struct {
	CookieName   string        `envconfig:"TOOLY_SESSION_COOKIE_NAME" default:"tooly_session"`
	TTL          time.Duration `envconfig:"TOOLY_SESSION_TTL" default:"168h"`
	CookieSecure bool          `envconfig:"TOOLY_SESSION_COOKIE_SECURE" default:"true"`
	SweepEvery   time.Duration `envconfig:"TOOLY_SESSION_SWEEP_EVERY" default:"10m"`
	IdleEviction time.Duration `envconfig:"TOOLY_SESSION_IDLE_EVICTION" default:"1h"`
}

const (
	PaymentProviderTest   = "test"
	PaymentProviderStripe = "stripe"
)

// PaymentConfig selects the payment collector strategy at bootstrap.
type PaymentConfig struct {
	Provider       string        `envconfig:"TOOLY_PAYMENT_PROVIDER" default:"test"`
	IdempotencyTTL time.Duration `envconfig:"TOOLY_PAYMENT_IDEMPOTENCY_TTL" default:"168h"`
}

func (p PaymentConfig) NormalizedProvider() string {
	provider := strings.TrimSpace(strings.ToLower(p.Provider))
	if provider == "" {
		return PaymentProviderTest
	}
	return provider
}

func (p PaymentConfig) validate(stripe StripeConfig) error {
	switch p.NormalizedProvider() {
	case PaymentProviderTest:
		return nil
	case PaymentProviderStripe:
		if strings.TrimSpace(stripe.APIKey) == "" {
			return fmt.Errorf("payment provider %q requires %s", PaymentProviderStripe, "TOOLY_STRIPE_API_KEY")
		}
		return nil
	default:
		return fmt.Errorf("unknown payment provider %q", p.Provider)
	}
}

type StripeConfig struct {
	APIKey string `envconfig:"TOOLY_STRIPE_API_KEY"`
	Env    string `envconfig:"TOOLY_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"TOOLY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
