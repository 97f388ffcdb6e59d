package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/wanbao-hr/agency-api/internal/email"
	"github.com/wanbao-hr/agency-api/pkg/messaging/redis"
	"github.com/wanbao-hr/agency-api/pkg/worker"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Outbox       OutboxConfig       `mapstructure:"outbox"`
	Email        email.Config       `mapstructure:"email"`
	Notification NotificationConfig `mapstructure:"notification"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" envconfig:"SERVER_PORT"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" envconfig:"SERVER_TIMEOUT_SECONDS"`
}

func (c ServerConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url" envconfig:"REDIS_URL"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

func (c RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

type OutboxConfig struct {
	BatchSize              int `mapstructure:"batch_size"`
	PollIntervalSeconds    int `mapstructure:"poll_interval_seconds"`
	RetryAttempts          int `mapstructure:"retry_attempts"`
	RetryDelaySeconds      int `mapstructure:"retry_delay_seconds"`
	RetentionHours         int `mapstructure:"retention_hours"`
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes"`
}

func (c OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:       c.BatchSize,
		PollInterval:    time.Duration(c.PollIntervalSeconds) * time.Second,
		RetryAttempts:   c.RetryAttempts,
		RetryDelay:      time.Duration(c.RetryDelaySeconds) * time.Second,
		RetentionPeriod: time.Duration(c.RetentionHours) * time.Hour,
		CleanupInterval: time.Duration(c.CleanupIntervalMinutes) * time.Minute,
	}
}

// NotificationConfig carries the courtesy-mail recipient for reportable
// disease cases. Empty disables the mail entirely.
type NotificationConfig struct {
	Email string `mapstructure:"email" envconfig:"NOTIFY_EMAIL"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// LoadConfig reads config/config.yml, then lets environment variables
// override individual fields.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	return &config, nil
}
