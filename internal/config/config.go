// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Harvest   HarvestConfig   `mapstructure:"harvest"`
	DB        DBConfig        `mapstructure:"db"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig holds the shared secret protecting the trigger endpoints.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
}

// FetchConfig configures fetch timeout and retry behavior.
type FetchConfig struct {
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffStepMs    int    `mapstructure:"backoff_step_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
	UserAgent        string `mapstructure:"user_agent"`
}

// SchedulerConfig governs batch size and inter-batch pacing.
type SchedulerConfig struct {
	BatchSize   int `mapstructure:"batch_size"`
	PacingMs    int `mapstructure:"pacing_ms"`
	RunTimeoutS int `mapstructure:"run_timeout_seconds"`
}

// HarvestConfig holds normalization defaults and snapshot behavior.
type HarvestConfig struct {
	DefaultCurrency string `mapstructure:"default_currency"`
	Snapshots       bool   `mapstructure:"snapshots"`
	EventTopic      string `mapstructure:"event_topic"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// StorageConfig selects the snapshot blob backend.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PublisherConfig selects the event publisher backend.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// HeadlessConfig configures the headless rendering fetcher.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.backoff_initial_ms", 500)
	v.SetDefault("fetch.backoff_step_ms", 500)
	v.SetDefault("fetch.backoff_max_ms", 5000)
	v.SetDefault("fetch.user_agent", "grantwatch-harvester/1.0 (+https://github.com/grantwatch/harvester)")
	v.SetDefault("scheduler.batch_size", 3)
	v.SetDefault("scheduler.pacing_ms", 2000)
	v.SetDefault("scheduler.run_timeout_seconds", 600)
	v.SetDefault("harvest.default_currency", "UAH")
	v.SetDefault("harvest.snapshots", true)
	v.SetDefault("harvest.event_topic", "harvester-runs")
	v.SetDefault("storage.provider", "memory")
	v.SetDefault("storage.prefix", "snapshots")
	v.SetDefault("publisher.provider", "memory")
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret must be set")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.MaxRetries <= 0 {
		return fmt.Errorf("fetch.max_retries must be > 0")
	}
	if c.Scheduler.BatchSize <= 0 {
		return fmt.Errorf("scheduler.batch_size must be > 0")
	}
	if c.Scheduler.PacingMs < 0 {
		return fmt.Errorf("scheduler.pacing_ms must be >= 0")
	}
	if c.Storage.Provider == "gcs" && c.Storage.GCSBucket == "" {
		return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is gcs")
	}
	if c.Publisher.Provider == "pubsub" && (c.Publisher.ProjectID == "" || c.Publisher.TopicName == "") {
		return fmt.Errorf("publisher.project_id and publisher.topic_name must be set when publisher.provider is pubsub")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	return nil
}

// FetchTimeout converts the configured fetch timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// Pacing converts the configured inter-batch delay into a duration.
func (c Config) Pacing() time.Duration {
	return time.Duration(c.Scheduler.PacingMs) * time.Millisecond
}
