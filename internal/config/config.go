package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultUploadMaxBytes = 5 << 20

// Config holds all configuration for the AgentList server.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Upload       UploadConfig
	Distribution DistributionConfig
}

type ServerConfig struct {
	Port          int
	Env           string
	RateLimitRPM  int
	MigrationsDir string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

type UploadConfig struct {
	MaxBytes int64
	Dir      string
}

type DistributionConfig struct {
	// FanOut is the number of agents each upload is split across.
	FanOut int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          envInt("AGENTLIST_PORT", 8080),
			Env:           envString("AGENTLIST_ENV", "development"),
			RateLimitRPM:  envInt("RATE_LIMIT_RPM", 60),
			MigrationsDir: envString("MIGRATIONS_DIR", "migrations"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			CacheTTL: envDuration("CACHE_TTL", 5*time.Minute),
		},
		Upload: UploadConfig{
			MaxBytes: envInt64("UPLOAD_MAX_BYTES", defaultUploadMaxBytes),
			Dir:      envString("UPLOAD_DIR", os.TempDir()),
		},
		Distribution: DistributionConfig{
			FanOut: envInt("DISTRIBUTION_FAN_OUT", 5),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings. Used by tooling that
// never touches Redis or the HTTP surface.
func LoadDatabase() (DatabaseConfig, error) {
	db := DatabaseConfig{
		URL:             os.Getenv("DATABASE_URL"),
		MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 4),
		MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 1),
		ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
	}
	if err := db.validate(); err != nil {
		return DatabaseConfig{}, err
	}
	return db, nil
}

func (c *Config) validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("AGENTLIST_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Upload.MaxBytes)
	}

	if c.Distribution.FanOut < 1 {
		return fmt.Errorf("DISTRIBUTION_FAN_OUT must be at least 1, got %d", c.Distribution.FanOut)
	}

	return nil
}

func (d DatabaseConfig) validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !strings.HasPrefix(d.URL, "postgres://") && !strings.HasPrefix(d.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
