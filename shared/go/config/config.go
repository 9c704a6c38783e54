package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers understood by the kv package.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds all application configuration.
//
// Sources, highest priority first: explicit path, CONFIG_PATH, ./local.yaml,
// environment. Environment variables are always laid over a YAML file.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"development"`
	SeedDemo bool          `yaml:"seed_demo" env:"SEED_DEMO" env-default:"false"`
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	CORS     CORSConfig    `yaml:"cors"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Driver      string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`
	Key         string `yaml:"key" env:"STORAGE_KEY" env-default:"restaurants"`
	DataDir     string `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`
	SQLitePath  string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"./data/restotrack.db"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL    string `yaml:"redis_url" env:"REDIS_URL"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX" env-default:"restotrack:"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:3000"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`   // debug, info, warn, error
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"` // json, text
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Load reads .env (if present), then the configuration sources in priority order,
// and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		return readFile(path)
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

func readFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("overlay env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	origins := c.CORS.AllowedOrigins[:0]
	for _, origin := range c.CORS.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.CORS.AllowedOrigins = origins
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errors []string

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.DataDir == "" {
			errors = append(errors, "DATA_DIR is required for the file driver")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errors = append(errors, "SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required for the postgres driver")
		}
	case DriverRedis:
		if c.Storage.RedisURL == "" {
			errors = append(errors, "REDIS_URL is required for the redis driver")
		}
	default:
		errors = append(errors, "STORAGE_DRIVER must be one of: memory, file, sqlite, postgres, redis")
	}

	if strings.TrimSpace(c.Storage.Key) == "" {
		errors = append(errors, "STORAGE_KEY must not be empty")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errors = append(errors, "SHUTDOWN_TIMEOUT must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// IsDevelopment reports whether ENV is empty or "development".
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "" || env == "development" || env == "local"
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Env) == "production"
}
