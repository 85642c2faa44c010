// Package config provides centralized configuration for leetreview.
// Values come from defaults, an optional TOML file and LEETREVIEW_* environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LEETREVIEW_DB_PATH.
const EnvPrefix = "LEETREVIEW"

// Config holds all configuration values.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string `mapstructure:"db_path"`

	// CatalogPath optionally points at a JSON catalog replacing the bundled one.
	CatalogPath string `mapstructure:"catalog_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// Timezone decides which calendar day "today" is. "Local" uses the system zone.
	Timezone string `mapstructure:"timezone"`

	// StatsWindowDays is how many days back the activity view reaches.
	StatsWindowDays int `mapstructure:"stats_window_days"`

	// WatchInterval is the polling interval of the due watcher.
	WatchInterval time.Duration `mapstructure:"watch_interval"`

	// FetchTimeout bounds each HTTP request made when looking up a title.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// Load reads configuration, applying defaults. The config file is taken from
// LEETREVIEW_CONFIG, or ~/.config/leetreview/config.toml when present.
func Load() (Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	v.SetDefault("db_path", filepath.Join(home, ".local", "share", "leetreview", "leetreview.db"))
	v.SetDefault("catalog_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("timezone", "Local")
	v.SetDefault("stats_window_days", 30)
	v.SetDefault("watch_interval", time.Hour)
	v.SetDefault("fetch_timeout", 30*time.Second)

	v.SetConfigType("toml")
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "leetreview"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path must not be empty")
	}
	if c.StatsWindowDays <= 0 {
		return fmt.Errorf("config: stats_window_days must be positive, got %d", c.StatsWindowDays)
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("config: watch_interval must be positive, got %s", c.WatchInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
