package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"Agricola Gentili"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL     string        `env:"DATABASE_URL"`
	RedisURL        string        `env:"REDIS_URL"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	// Identity provider: access tokens are HS256 JWTs signed with AuthJWTSecret.
	AuthJWTSecret string `env:"AUTH_JWT_SECRET"`
	AuthPublicURL string `env:"AUTH_PUBLIC_URL"`
	AuthAnonKey   string `env:"AUTH_ANON_KEY"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`

	MailFrom          string `env:"MAIL_FROM"`
	MailFromName      string `env:"MAIL_FROM_NAME" envDefault:"Agricola Gentili"`
	OrdersTeamEmail   string `env:"ORDERS_TEAM_EMAIL"`
	ContactToEmail    string `env:"CONTACT_TO_EMAIL"`
	RetailerTeamEmail string `env:"RETAILER_TEAM_EMAIL"`

	AutoApproveUnverified bool          `env:"AUTO_APPROVE_UNVERIFIED" envDefault:"false"`
	ShippingCountries     []string      `env:"SHIPPING_COUNTRIES" envSeparator:"," envDefault:"IT"`
	CollectPhone          bool          `env:"COLLECT_PHONE" envDefault:"true"`
	DefaultCurrency       string        `env:"DEFAULT_CURRENCY" envDefault:"EUR"`
	UpstreamTimeout       time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"8s"`
	ViesURL               string        `env:"VIES_URL" envDefault:"https://ec.europa.eu/taxation_customs/vies/services/checkVatService"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USER"`
	Password string `env:"PASSWORD"`
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port > 0
}

// TeamEmailForRetailers falls back to the contact inbox when no dedicated
// retailer inbox is configured.
func (c *Config) TeamEmailForRetailers() string {
	if c.RetailerTeamEmail != "" {
		return c.RetailerTeamEmail
	}
	return c.ContactToEmail
}

func (c *Config) TeamEmailForOrders() string {
	if c.OrdersTeamEmail != "" {
		return c.OrdersTeamEmail
	}
	return c.ContactToEmail
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("Could not load .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ConfigureLogger(cfg *Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
