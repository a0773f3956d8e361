// Package config provides configuration management for the contact sync service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Intercom IntercomConfig
	Mailgun  MailgunConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// IntercomConfig holds upstream contact source configuration
type IntercomConfig struct {
	APIToken          string
	BaseURL           string
	RequestsPerSecond float64
}

// MailgunConfig holds email delivery provider configuration
type MailgunConfig struct {
	APIKey      string
	Domain      string
	DefaultFrom string
}

// AuthConfig holds authentication configuration.
// OperatorEmail is the single identity allowed to use the admin API.
type AuthConfig struct {
	JWTSecret     string
	OperatorEmail string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	StatsTTL time.Duration
}

// ImportConfig holds import pipeline configuration
type ImportConfig struct {
	PageSize int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "contact_sync"),
				User:           getEnv("POSTGRES_USER", "contact_sync"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Intercom: IntercomConfig{
			APIToken:          getEnv("INTERCOM_API_TOKEN", ""),
			BaseURL:           getEnv("INTERCOM_BASE_URL", "https://api.intercom.io"),
			RequestsPerSecond: getEnvAsFloat("INTERCOM_REQUESTS_PER_SECOND", 5),
		},
		Mailgun: MailgunConfig{
			APIKey:      getEnv("MAILGUN_API_KEY", ""),
			Domain:      getEnv("MAILGUN_DOMAIN", ""),
			DefaultFrom: getEnv("MAILGUN_DEFAULT_FROM", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			OperatorEmail: getEnv("OPERATOR_EMAIL", ""),
		},
		Cache: CacheConfig{
			StatsTTL: getEnvAsDuration("CACHE_STATS_TTL", 30*time.Second),
		},
		Import: ImportConfig{
			PageSize: getEnvAsInt("IMPORT_PAGE_SIZE", 50),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that required settings are present and sane
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.OperatorEmail == "" {
		return fmt.Errorf("OPERATOR_EMAIL is required")
	}
	if c.Import.PageSize <= 0 || c.Import.PageSize > 150 {
		return fmt.Errorf("IMPORT_PAGE_SIZE must be between 1 and 150, got %d", c.Import.PageSize)
	}
	if c.Intercom.RequestsPerSecond <= 0 {
		return fmt.Errorf("INTERCOM_REQUESTS_PER_SECOND must be positive, got %v", c.Intercom.RequestsPerSecond)
	}
	return nil
}

// PostgresURL builds the connection URL used by the migration tool
func (c *Config) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.Database.Postgres.User,
		c.Database.Postgres.Password,
		c.Database.Postgres.Host,
		c.Database.Postgres.Port,
		c.Database.Postgres.Database,
	)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
