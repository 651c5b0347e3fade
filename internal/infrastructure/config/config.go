package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/eslsoft/revise/pkg/srs"
)

// Config holds all configuration for the application.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	SRS      SRSConfig      `mapstructure:"srs"`
	Session  SessionConfig  `mapstructure:"session"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SRSConfig holds scheduler tuning knobs.
type SRSConfig struct {
	DesiredRetention float64 `mapstructure:"desired_retention"`
	MaxIntervalDays  int     `mapstructure:"max_interval_days"`
	LearningSteps    int     `mapstructure:"learning_steps"`
}

// SessionConfig holds session composition defaults.
type SessionConfig struct {
	DefaultNewLimit    int32 `mapstructure:"default_new_limit"`
	DefaultReviewLimit int32 `mapstructure:"default_review_limit"`
}

// Load reads configuration from file and environment variables. An empty
// path falls back to searching for revise.yaml in the working directory
// and ./config.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("revise")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()

	viper.SetEnvPrefix("REVISE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. The defaults give a
// zero-config setup backed by a local sqlite file.
func setDefaults() {
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "revise.db")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetDefault("srs.desired_retention", 0.9)
	viper.SetDefault("srs.max_interval_days", 365)
	viper.SetDefault("srs.learning_steps", 2)

	viper.SetDefault("session.default_new_limit", 10)
	viper.SetDefault("session.default_review_limit", 20)
}

// EngineConfig maps the srs section onto the scheduler's own config type.
func (c *Config) EngineConfig() srs.Config {
	return srs.Config{
		DesiredRetention: c.SRS.DesiredRetention,
		MaxIntervalDays:  c.SRS.MaxIntervalDays,
		LearningSteps:    c.SRS.LearningSteps,
	}
}
