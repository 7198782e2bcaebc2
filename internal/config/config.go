// Package config holds the bot's tunable constants and the environment-driven
// runtime configuration.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	// Teams
	DefaultGroupSize = 6

	// Group-role lookup
	DefaultRoleLookupTimeout = 2 * time.Second
	DefaultRoleCacheTTL      = 60 * time.Second

	// History
	HistoryLimit = 5

	// Redis key space
	RedisPrefix = "footybot"
)

// TeamPalette labels teams by position. Labels wrap when a round has more
// teams than entries.
var TeamPalette = []string{
	"Red",
	"Blue",
	"Green",
	"Yellow",
	"Orange",
	"Purple",
	"White",
	"Black",
}

// Config is the process configuration, read from the environment.
type Config struct {
	BotToken      string `envconfig:"TELEGRAM_BOT_TOKEN" validate:"required"`
	WebhookURL    string `envconfig:"WEBHOOK_URL" validate:"omitempty,url"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET" validate:"required_with=WebhookURL,omitempty,max=256"`
	Port          int    `envconfig:"PORT" default:"10000" validate:"min=1,max=65535"`

	AdminIDs  []int64 `envconfig:"ADMIN_IDS"`
	GroupSize int     `envconfig:"GROUP_SIZE" default:"6" validate:"min=1"`

	RoleLookupTimeout time.Duration `envconfig:"ROLE_LOOKUP_TIMEOUT" default:"2s" validate:"gt=0"`
	RoleCacheTTL      time.Duration `envconfig:"ROLE_CACHE_TTL" default:"60s" validate:"gte=0"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" validate:"min=0"`

	DatabaseDSN string `envconfig:"DATABASE_DSN"`
	JWTSecret   string `envconfig:"JWT_SECRET"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

var validate = validator.New()

// Load decodes the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// WebhookEnabled reports whether updates arrive through the webhook instead of
// long polling.
func (c *Config) WebhookEnabled() bool { return c.WebhookURL != "" }

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

// ArchiveEnabled reports whether a database is configured for the match archive.
func (c *Config) ArchiveEnabled() bool { return c.DatabaseDSN != "" }

// APIEnabled reports whether the JWT-protected API can be mounted.
func (c *Config) APIEnabled() bool { return c.JWTSecret != "" }
