package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the mnoda CLI.
// Values are populated from .mnoda.yaml, MNODA_* env vars, and CLI flags.
type Config struct {
	LogLevel      string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Development   bool          `mapstructure:"development"`
	Verbose       bool          `mapstructure:"verbose"`
	Format        string        `mapstructure:"format" validate:"oneof=json yaml toml bson"`
	Indent        bool          `mapstructure:"indent"`
	ArchivePath   string        `mapstructure:"archive_path" validate:"required"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce" validate:"gt=0"`
}

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("development", false)
	v.SetDefault("verbose", false)
	v.SetDefault("format", "json")
	v.SetDefault("indent", true)
	v.SetDefault("archive_path", "mnoda.db")
	v.SetDefault("watch_debounce", 200*time.Millisecond)
}

// Load reads configuration from the global viper instance, applying built-in
// defaults for any values not set by config file, environment, or flags.
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load for a specific viper instance.
func LoadFrom(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Verbose && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
