package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // checkout time zone must resolve without system zoneinfo

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage backends for carts and last-order pointers.
const (
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	CORS         CORSConfig
	S3           S3Config
	Redis        RedisConfig
	Storage      StorageConfig
	OrderService OrderServiceConfig
	Checkout     CheckoutConfig
	Coupons      CouponConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `envconfig:"DB_HOST" default:"localhost"`
	Port            int    `envconfig:"DB_PORT" default:"5432"`
	User            string `envconfig:"DB_USER" default:"postgres"`
	Password        string `envconfig:"DB_PASSWORD"`
	Database        string `envconfig:"DB_NAME" default:"dulcekart"`
	MaxConnections  int    `envconfig:"DB_MAX_CONNECTIONS" default:"25"`
	MinConnections  int    `envconfig:"DB_MIN_CONNECTIONS" default:"5"`
	MaxConnLifetime int    `envconfig:"DB_MAX_CONN_LIFETIME" default:"300"` // seconds
	RunMigrations   bool   `envconfig:"DB_RUN_MIGRATIONS" default:"true"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"` // "json" or "console"
}

// AuthConfig holds authentication configuration. When APIKey is empty the
// API key check is disabled.
type AuthConfig struct {
	APIKey   string `envconfig:"API_KEY"`
	Required bool   `envconfig:"API_KEY_REQUIRED" default:"false"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// S3Config holds AWS S3 configuration for coupon files.
type S3Config struct {
	Enabled bool   `envconfig:"S3_ENABLED" default:"false"`
	Bucket  string `envconfig:"S3_BUCKET"`
	Region  string `envconfig:"S3_REGION" default:"us-east-1"`
	Prefix  string `envconfig:"S3_PREFIX" default:"coupons/"` // Path prefix within bucket
}

// RedisConfig holds the Redis connection used by the redis storage backend.
type RedisConfig struct {
	URL      string        `envconfig:"REDIS_URL"`
	Address  string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	TTL      time.Duration `envconfig:"REDIS_TTL" default:"720h"`
}

// StorageConfig selects where carts and last-order pointers are kept.
type StorageConfig struct {
	Backend string `envconfig:"STORAGE_BACKEND" default:"postgres"`
}

// OrderServiceConfig points at the external order service.
type OrderServiceConfig struct {
	BaseURL string        `envconfig:"ORDER_SERVICE_URL" default:"http://localhost:9000/api"`
	Timeout time.Duration `envconfig:"ORDER_SERVICE_TIMEOUT" default:"10s"`
}

// CheckoutConfig holds checkout rules.
type CheckoutConfig struct {
	TimeZone string `envconfig:"CHECKOUT_TIMEZONE" default:"America/Santiago"`

	// Sessions idle for longer than SessionIdleTimeout are unloaded from
	// memory. Their carts stay in storage.
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"2h"`
	SweepInterval      time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"10m"`

	// MaxSessions caps the sessions loaded at once; the least recently used
	// one is unloaded beyond it.
	MaxSessions int `envconfig:"SESSION_MAX_LOADED" default:"10000"`
}

// CouponConfig lists extra gzip coupon files loaded at start-up.
type CouponConfig struct {
	Files []string `envconfig:"COUPON_FILES"`
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables
// take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Storage.Backend != StoragePostgres && c.Storage.Backend != StorageRedis && c.Storage.Backend != StorageMemory {
		return fmt.Errorf("invalid storage backend: %s (must be postgres, redis, or memory)", c.Storage.Backend)
	}

	// The catalog always lives in PostgreSQL; the backend only decides
	// where carts and last-order pointers go.
	if err := c.Database.validate(); err != nil {
		return err
	}

	if c.Storage.Backend == StorageRedis && c.Redis.URL == "" && c.Redis.Address == "" {
		return fmt.Errorf("redis address or URL is required for the redis storage backend")
	}

	if c.Auth.Required && c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.OrderService.BaseURL == "" {
		return fmt.Errorf("order service URL is required")
	}

	if c.OrderService.Timeout <= 0 {
		return fmt.Errorf("order service timeout must be positive")
	}

	if c.Checkout.SessionIdleTimeout <= 0 || c.Checkout.SweepInterval <= 0 {
		return fmt.Errorf("session idle timeout and sweep interval must be positive")
	}

	if c.Checkout.MaxSessions < 1 {
		return fmt.Errorf("session max loaded must be at least 1")
	}

	if _, err := c.Checkout.Location(); err != nil {
		return err
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Location resolves the checkout time zone used for delivery date checks.
func (c *CheckoutConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid checkout time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
