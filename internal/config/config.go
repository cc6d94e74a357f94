package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	App           AppConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `envconfig:"SERVER_ALLOWED_ORIGINS"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// DatabaseConfig holds database connection configuration. It is only
// loaded when the postgres storage driver is selected.
type DatabaseConfig struct {
	Host           string `envconfig:"DB_HOST" required:"true"`
	Port           string `envconfig:"DB_PORT" required:"true"`
	User           string `envconfig:"DB_USER" required:"true"`
	Password       string `envconfig:"DB_PASSWORD" required:"true"`
	Name           string `envconfig:"DB_NAME" required:"true"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns       int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns       int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	MigrateOnStart bool   `envconfig:"DB_MIGRATE_ON_START" default:"true"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if c.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if c.MinConns <= 0 {
		return fmt.Errorf("min connections must be positive")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections (%d) cannot be greater than max connections (%d)", c.MinConns, c.MaxConns)
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s (must be one of: disable, require, verify-ca, verify-full)", c.SSLMode)
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// DefaultCategories is what the UI offers when CATEGORY_SUGGESTIONS is unset.
var DefaultCategories = []string{"Work", "Personal", "Learning", "Reading", "Tools", "Other"}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string   `envconfig:"APP_ENV" required:"true"` // development, staging, production, test
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	Storage     string   `envconfig:"STORAGE_DRIVER" default:"postgres"`
	Categories  []string `envconfig:"CATEGORY_SUGGESTIONS"`
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	switch c.Storage {
	case StoragePostgres:
	case StorageMemory:
		if c.Environment == "production" {
			return fmt.Errorf("memory storage is not allowed in production")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be one of: postgres, memory)", c.Storage)
	}
	return nil
}

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

// AuthConfig selects and configures the identity provider.
type AuthConfig struct {
	Provider                string `envconfig:"AUTH_PROVIDER" default:"jwt"`
	JWTSecret               string `envconfig:"AUTH_JWT_SECRET"`
	JWTIssuer               string `envconfig:"AUTH_JWT_ISSUER"`
	SessionCookie           string `envconfig:"AUTH_SESSION_COOKIE" default:"__session"`
	FirebaseCredentialsFile string `envconfig:"AUTH_FIREBASE_CREDENTIALS_FILE"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	switch c.Provider {
	case AuthProviderJWT:
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("jwt secret must be at least 32 bytes")
		}
	case AuthProviderFirebase:
		if c.FirebaseCredentialsFile == "" {
			return fmt.Errorf("firebase credentials file is required when provider is firebase")
		}
		if _, err := os.Stat(c.FirebaseCredentialsFile); err != nil {
			return fmt.Errorf("firebase credentials file: %w", err)
		}
	default:
		return fmt.Errorf("invalid auth provider: %s (must be one of: jwt, firebase)", c.Provider)
	}
	return nil
}

// ObservabilityConfig holds service identification reported by health checks.
type ObservabilityConfig struct {
	ServiceName    string `envconfig:"SERVICE_NAME" default:"linkshelf"`
	ServiceVersion string `envconfig:"SERVICE_VERSION" default:"dev"`
}

// Load loads configuration from environment variables only.
// .env loading happens in the app package for development and test.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load Server config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load App config: %w", err)
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, fmt.Errorf("invalid App config: %w", err)
	}
	if len(cfg.App.Categories) == 0 {
		cfg.App.Categories = append([]string(nil), DefaultCategories...)
	}

	if cfg.App.Storage == StoragePostgres {
		if err := envconfig.Process("", &cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to load Database config: %w", err)
		}
		if err := cfg.Database.Validate(); err != nil {
			return nil, fmt.Errorf("invalid Database config: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg.Auth); err != nil {
		return nil, fmt.Errorf("failed to load Auth config: %w", err)
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Auth config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Observability); err != nil {
		return nil, fmt.Errorf("failed to load Observability config: %w", err)
	}

	return cfg, nil
}
