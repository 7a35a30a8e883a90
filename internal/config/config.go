package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Feed      FeedConfig      `yaml:"feed"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Admin     AdminConfig     `yaml:"admin"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// FeedConfig contains upstream observation feed settings
type FeedConfig struct {
	BaseURL        string `yaml:"base_url"`
	Limit          int64  `yaml:"limit"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LedgerConfig contains access-request ledger settings
type LedgerConfig struct {
	Backend            string `yaml:"backend"` // "postgres" or "memory"
	GrantWindowSeconds int    `yaml:"grant_window_seconds"`
}

// AdminConfig contains administrator gate settings
type AdminConfig struct {
	PasswordHash    string `yaml:"password_hash"` // bcrypt
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// SendGridConfig contains decision notification settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RefreshFeed string `yaml:"refresh_feed"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Feed
	if val := os.Getenv("FEED_URL"); val != "" {
		c.Feed.BaseURL = val
	}

	// Admin
	if val := os.Getenv("ADMIN_PASSWORD_HASH"); val != "" {
		c.Admin.PasswordHash = val
	}
	if val := os.Getenv("ADMIN_JWT_SECRET"); val != "" {
		c.Admin.JWTSecret = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Ledger defaults and validation
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = "postgres"
	}
	if c.Ledger.Backend != "postgres" && c.Ledger.Backend != "memory" {
		return fmt.Errorf("unknown ledger backend: %s", c.Ledger.Backend)
	}
	if c.Ledger.GrantWindowSeconds == 0 {
		c.Ledger.GrantWindowSeconds = 60
	}
	if c.Ledger.GrantWindowSeconds < 0 {
		return fmt.Errorf("invalid grant window: %d", c.Ledger.GrantWindowSeconds)
	}

	// Database validation (only for the durable backend)
	if c.Ledger.Backend == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// Feed validation
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed base URL is required")
	}
	if c.Feed.Limit == 0 {
		c.Feed.Limit = 50000
	}
	if c.Feed.TimeoutSeconds == 0 {
		c.Feed.TimeoutSeconds = 60
	}

	// Admin validation
	if c.Admin.PasswordHash == "" {
		return fmt.Errorf("admin password hash is required")
	}
	if c.Admin.JWTSecret == "" {
		return fmt.Errorf("admin JWT secret is required")
	}
	if len(c.Admin.JWTSecret) < 32 {
		return fmt.Errorf("admin JWT secret must be at least 32 characters")
	}
	if c.Admin.TokenTTLMinutes == 0 {
		c.Admin.TokenTTLMinutes = 30
	}

	// Scheduler defaults
	if c.Scheduler.RefreshFeed == "" {
		c.Scheduler.RefreshFeed = "0 */5 * * * *" // Every 5 minutes
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
