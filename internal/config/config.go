// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Ingest    IngestConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Metrics PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// RateLimitConfig configures the per-client token buckets. Sustained capacity
// refills over one minute, burst capacity over one second.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled"`
	RequestsPerMinute int64 `mapstructure:"requests_per_minute"`
	BurstCapacity     int64 `mapstructure:"burst_capacity"`
}

// IngestConfig configures the async ingestion worker pool
type IngestConfig struct {
	CoreWorkers   int           `mapstructure:"core_workers"`
	MaxWorkers    int           `mapstructure:"max_workers"`
	QueueCapacity int           `mapstructure:"queue_capacity"`
	KeepAlive     time.Duration `mapstructure:"keep_alive"`
	DrainTimeout  time.Duration `mapstructure:"drain_timeout"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("METEO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.postgres.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.channel", "metrics.ingested")

	// Rate limit defaults: 100 req/min sustained, 20 req/s burst
	viper.SetDefault("ratelimit.enabled", true)
	viper.SetDefault("ratelimit.requests_per_minute", 100)
	viper.SetDefault("ratelimit.burst_capacity", 20)

	// Ingest executor defaults
	viper.SetDefault("ingest.core_workers", 10)
	viper.SetDefault("ingest.max_workers", 50)
	viper.SetDefault("ingest.queue_capacity", 500)
	viper.SetDefault("ingest.keep_alive", "60s")
	viper.SetDefault("ingest.drain_timeout", "60s")
}

func validateConfig(config *Config) error {
	if config.Database.Metrics.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if config.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("ratelimit requests_per_minute must be positive")
	}
	if config.RateLimit.BurstCapacity <= 0 {
		return fmt.Errorf("ratelimit burst_capacity must be positive")
	}
	if config.Ingest.CoreWorkers <= 0 || config.Ingest.MaxWorkers < config.Ingest.CoreWorkers {
		return fmt.Errorf("ingest worker bounds are invalid")
	}
	if config.Ingest.QueueCapacity <= 0 {
		return fmt.Errorf("ingest queue_capacity must be positive")
	}
	return nil
}
