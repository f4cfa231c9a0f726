// Package config loads the bot settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppName     = "bricklink-telegram-bot"
	EnvFileName = "config.env"
)

const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	BotToken   string `envconfig:"BOT_TOKEN"`
	BotName    string `envconfig:"BOT_NAME"`
	AdminUsers string `envconfig:"ADMIN_USERS"`

	BrickLink   BrickLinkConfig
	Rebrickable RebrickableConfig
	Storage     ObjectStorageConfig
	Cache       CacheConfig

	DefaultCurrency string `envconfig:"DEFAULT_CURRENCY" default:"EUR"`
	FlagOverrides   string `envconfig:"FLAG_OVERRIDES"`

	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	WebhookURL  string `envconfig:"WEBHOOK_URL"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"production"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

type BrickLinkConfig struct {
	ConsumerKey    string  `envconfig:"BL_CONSUMER_KEY"`
	ConsumerSecret string  `envconfig:"BL_CONSUMER_SECRET"`
	AccessToken    string  `envconfig:"BL_ACCESS_TOKEN"`
	TokenSecret    string  `envconfig:"BL_TOKEN_SECRET"`
	BaseURL        string  `envconfig:"BL_BASE_URL"`
	RatePerSecond  float64 `envconfig:"BL_RATE_PER_SECOND" default:"2"`
	Burst          int     `envconfig:"BL_BURST" default:"5"`
}

type RebrickableConfig struct {
	Key     string `envconfig:"REBRICKABLE_KEY"`
	BaseURL string `envconfig:"REBRICKABLE_BASE_URL"`
}

// ObjectStorageConfig locates the minifigure index object.
type ObjectStorageConfig struct {
	Region      string `envconfig:"AWS_REGION"`
	Bucket      string `envconfig:"BUCKET"`
	ObjectKey   string `envconfig:"MF_FILE" default:"minifigures.csv"`
	Endpoint    string `envconfig:"S3_ENDPOINT"`
	AccessKeyID string `envconfig:"S3_ACCESS_KEY_ID"`
	SecretKey   string `envconfig:"S3_SECRET_ACCESS_KEY"`
}

type CacheConfig struct {
	Backend  string        `envconfig:"CACHE_BACKEND" default:"sqlite"`
	TTL      time.Duration `envconfig:"CACHE_TTL" default:"6h"`
	DBPath   string        `envconfig:"DB_PATH" default:"bricklink-bot.db"`
	RedisURL string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory and from .env in the working directory. Errors are ignored
// since the files may not exist. Variables already set win.
func LoadEnvFile() {
	_ = godotenv.Load()
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Validate returns the names of required settings that are missing, and an
// error for settings that are present but unusable.
func (c *Config) Validate() ([]string, error) {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"BOT_TOKEN", c.BotToken},
		{"BL_CONSUMER_KEY", c.BrickLink.ConsumerKey},
		{"BL_CONSUMER_SECRET", c.BrickLink.ConsumerSecret},
		{"BL_ACCESS_TOKEN", c.BrickLink.AccessToken},
		{"BL_TOKEN_SECRET", c.BrickLink.TokenSecret},
		{"REBRICKABLE_KEY", c.Rebrickable.Key},
		{"BUCKET", c.Storage.Bucket},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}

	switch c.Cache.Backend {
	case CacheSQLite, CacheRedis, CacheNone:
	default:
		return missing, fmt.Errorf("CACHE_BACKEND must be one of %s, %s, %s: got %q", CacheSQLite, CacheRedis, CacheNone, c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 && c.Cache.Backend != CacheNone {
		return missing, fmt.Errorf("CACHE_TTL must be positive: got %s", c.Cache.TTL)
	}
	if len(c.DefaultCurrency) != 3 {
		return missing, fmt.Errorf("DEFAULT_CURRENCY must be a three letter code: got %q", c.DefaultCurrency)
	}
	return missing, nil
}

// Admins is the set of users allowed to run admin commands, keyed by lower
// case username without the @ prefix or by numeric user id.
type Admins struct {
	names map[string]bool
	ids   map[int64]bool
}

// ParseAdmins splits a ; or , separated list of usernames and user ids.
func ParseAdmins(s string) Admins {
	a := Admins{names: map[string]bool{}, ids: map[int64]bool{}}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if id, err := strconv.ParseInt(f, 10, 64); err == nil {
			a.ids[id] = true
			continue
		}
		a.names[strings.ToLower(strings.TrimPrefix(f, "@"))] = true
	}
	return a
}

// Contains reports whether the user with the given id or username is an
// admin.
func (a Admins) Contains(id int64, username string) bool {
	if a.ids[id] {
		return true
	}
	return username != "" && a.names[strings.ToLower(strings.TrimPrefix(username, "@"))]
}

func (a Admins) Len() int {
	return len(a.names) + len(a.ids)
}
