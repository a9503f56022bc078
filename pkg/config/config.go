// Package config provides configuration management for the vgbench runner.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the runner.
type Config struct {
	Runner     RunnerConfig     `mapstructure:"runner"`
	Regression RegressionConfig `mapstructure:"regression"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Log        LogConfig        `mapstructure:"log"`
}

// RunnerConfig holds global runner behavior.
type RunnerConfig struct {
	ValgrindPath  string `mapstructure:"valgrind_path"`
	AllowASLR     bool   `mapstructure:"allow_aslr"`
	TargetDir     string `mapstructure:"target_dir"`
	RunnerBinPath string `mapstructure:"runner_bin_path"`
}

// RegressionConfig holds the default regression limits applied when a
// benchmark's own configuration does not override them.
type RegressionConfig struct {
	DefaultSoftLimitPct float64 `mapstructure:"default_soft_limit_pct"`
	DefaultHardLimit    float64 `mapstructure:"default_hard_limit"`
	FailFast            bool    `mapstructure:"fail_fast"`
}

// DatabaseConfig holds run-history database connection configuration.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // postgres, mysql, sqlite, or clickhouse
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds artifact archival configuration.
type StorageConfig struct {
	Type              string `mapstructure:"type"` // cos or local
	Bucket            string `mapstructure:"bucket"`
	Region            string `mapstructure:"region"`
	SecretID          string `mapstructure:"secret_id"`
	SecretKey         string `mapstructure:"secret_key"`
	Domain            string `mapstructure:"domain"`
	Scheme            string `mapstructure:"scheme"`
	LocalPath         string `mapstructure:"local_path"`
	CompressArtifacts bool   `mapstructure:"compress_artifacts"`
}

// TelemetryConfig holds tracing configuration.
type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPProtocol string  `mapstructure:"otlp_protocol"` // grpc or http
	SamplerRatio float64 `mapstructure:"sampler_ratio"`
	ServiceName  string  `mapstructure:"service_name"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vgbench-runner")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("runner.valgrind_path", "valgrind")
	v.SetDefault("runner.allow_aslr", false)
	v.SetDefault("runner.target_dir", "./target/vgbench")

	v.SetDefault("regression.default_soft_limit_pct", 5.0)
	v.SetDefault("regression.fail_fast", false)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./vgbench-artifacts")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_protocol", "grpc")
	v.SetDefault("telemetry.sampler_ratio", 1.0)
	v.SetDefault("telemetry.service_name", "vgbench-runner")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite", "clickhouse":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	switch c.Storage.Type {
	case "cos", "local":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.Regression.DefaultSoftLimitPct < 0 {
		return fmt.Errorf("regression default soft limit must be non-negative, got %f", c.Regression.DefaultSoftLimitPct)
	}

	if c.Telemetry.SamplerRatio < 0 || c.Telemetry.SamplerRatio > 1 {
		return fmt.Errorf("telemetry sampler ratio must be in [0,1], got %f", c.Telemetry.SamplerRatio)
	}

	return nil
}

// EnsureTargetDir creates the runner's target directory if it doesn't exist.
func (c *Config) EnsureTargetDir() error {
	if c.Runner.TargetDir == "" {
		return nil
	}
	return os.MkdirAll(c.Runner.TargetDir, 0755)
}
