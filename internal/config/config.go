// Package config provides configuration management for the Moto Picks service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Models     ModelsConfig     `mapstructure:"models" validate:"required"`
	Predictor  PredictorConfig  `mapstructure:"predictor" validate:"required"`
	Optimizer  OptimizerConfig  `mapstructure:"optimizer" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache" validate:"required"`
	LiveTiming LiveTimingConfig `mapstructure:"live_timing" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// ModelsConfig locates trained model artifacts and controls reloading
type ModelsConfig struct {
	ArtifactDir           string `mapstructure:"artifact_dir" validate:"required"`
	ReloadIntervalMinutes int    `mapstructure:"reload_interval_minutes" validate:"required,gt=0"`
}

// PredictorConfig holds prediction pipeline tunables
type PredictorConfig struct {
	QualificationCutoff       float64 `mapstructure:"qualification_cutoff" validate:"gte=0,lte=1"`
	IntervalMargin            float64 `mapstructure:"interval_margin" validate:"gte=0"`
	FallbackMargin            float64 `mapstructure:"fallback_margin" validate:"gte=0"`
	FallbackQualificationRate float64 `mapstructure:"fallback_qualification_rate" validate:"gte=0,lte=1"`
}

// OptimizerConfig holds team optimization settings
type OptimizerConfig struct {
	SolveTimeoutSeconds int `mapstructure:"solve_timeout_seconds" validate:"required,gt=0"`
}

// CacheConfig controls the per-event prediction cache
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	MaxEvents  int `mapstructure:"max_events" validate:"required,gt=0"`
}

// LiveTimingConfig represents the external sports-data provider
type LiveTimingConfig struct {
	APIURL                 string `mapstructure:"api_url" validate:"required,url"`
	StreamURL              string `mapstructure:"stream_url"`
	APIKey                 string `mapstructure:"api_key"`
	PollingIntervalSeconds int    `mapstructure:"polling_interval_seconds" validate:"required,gt=0"`
	StreamEnabled          bool   `mapstructure:"stream_enabled"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ModelReloadInterval returns the reload interval as a duration
func (c *Config) ModelReloadInterval() time.Duration {
	return time.Duration(c.Models.ReloadIntervalMinutes) * time.Minute
}

// SolveTimeout returns the optimizer timeout as a duration
func (c *Config) SolveTimeout() time.Duration {
	return time.Duration(c.Optimizer.SolveTimeoutSeconds) * time.Second
}

// CacheTTL returns the prediction cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
