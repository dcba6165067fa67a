package hub

import (
	"time"

	"github.com/dmitrymomot/storefront/pkg/httpserver"
	"github.com/dmitrymomot/storefront/pkg/pg"
	"github.com/dmitrymomot/storefront/pkg/redis"
)

// Config configures the reference notification hub.
type Config struct {
	HTTP httpserver.Config `envPrefix:"HUB_"`

	JWTSecret      string        `env:"HUB_JWT_SECRET"`
	JWTIssuer      string        `env:"HUB_JWT_ISSUER" envDefault:"storefront-hub"`
	TokenTTL       time.Duration `env:"HUB_TOKEN_TTL" envDefault:"24h"`
	PingInterval   time.Duration `env:"HUB_PING_INTERVAL" envDefault:"25s"`
	PingTimeout    time.Duration `env:"HUB_PING_TIMEOUT" envDefault:"20s"`
	AuthTimeout    time.Duration `env:"HUB_AUTH_TIMEOUT" envDefault:"10s"`
	MaxPayload     int           `env:"HUB_MAX_PAYLOAD" envDefault:"1000000"`
	SubscriberBuf  int           `env:"HUB_SUBSCRIBER_BUFFER" envDefault:"32"`
	MaxFeeds       int           `env:"HUB_MAX_FEEDS" envDefault:"10000"`
	AllowedOrigins []string      `env:"HUB_ALLOWED_ORIGINS" envSeparator:","`

	Postgres pg.Config
	Redis    redis.Config
}

// DefaultConfig mirrors the envDefault tags and leaves JWTSecret empty.
func DefaultConfig() Config {
	return Config{
		HTTP: httpserver.Config{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		JWTIssuer:     "storefront-hub",
		TokenTTL:      24 * time.Hour,
		PingInterval:  25 * time.Second,
		PingTimeout:   20 * time.Second,
		AuthTimeout:   10 * time.Second,
		MaxPayload:    1_000_000,
		SubscriberBuf: 32,
		MaxFeeds:      10_000,
		Postgres: pg.Config{
			MaxOpenConns:      10,
			MaxIdleConns:      2,
			HealthCheckPeriod: time.Minute,
			MaxConnIdleTime:   10 * time.Minute,
			MaxConnLifetime:   30 * time.Minute,
			RetryAttempts:     3,
			RetryInterval:     2 * time.Second,
			MigrationsTable:   "schema_migrations",
		},
		Redis: redis.Config{
			RetryAttempts:  3,
			RetryInterval:  2 * time.Second,
			ConnectTimeout: 30 * time.Second,
		},
	}
}

// withDefaults fills zero socket and feed settings from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.JWTIssuer == "" {
		c.JWTIssuer = d.JWTIssuer
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = d.TokenTTL
	}
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = d.PingTimeout
	}
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = d.AuthTimeout
	}
	if c.MaxPayload <= 0 {
		c.MaxPayload = d.MaxPayload
	}
	if c.SubscriberBuf <= 0 {
		c.SubscriberBuf = d.SubscriberBuf
	}
	if c.MaxFeeds <= 0 {
		c.MaxFeeds = d.MaxFeeds
	}
	return c
}
