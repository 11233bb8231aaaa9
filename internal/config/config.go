package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/svw-info/rotord/internal/logger"
	"github.com/svw-info/rotord/internal/types"
)

// Config holds all configuration for the rotation daemon.
type Config struct {
	Watch       WatchConfig       `mapstructure:"watch"`
	Logger      logger.Config     `mapstructure:"logging"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// WatchConfig describes the directory being watched and the rotation
// policy applied to each configured family.
type WatchConfig struct {
	Directory              string         `mapstructure:"directory" json:"directory"`
	Families               []string       `mapstructure:"families" json:"families"`
	MaxFiles               int            `mapstructure:"max_files" json:"max_files"`
	DeleteObsoleteArchives bool           `mapstructure:"delete_obsolete_archives" json:"delete_obsolete_archives"`
	DeleteObsoleteLogs     bool           `mapstructure:"delete_obsolete_logs" json:"delete_obsolete_logs"`
	ShutdownDrainDeadline  types.Duration `mapstructure:"shutdown_drain_deadline" json:"shutdown_drain_deadline"`
}

// DevelopmentConfig holds development-specific overrides.
type DevelopmentConfig struct {
	Logger logger.Config `mapstructure:"logging"`
}

// Load loads configuration from environment variables and config files.
func Load(configPath string) (*Config, error) {
	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/rotord/")
	viper.AddConfigPath("$HOME/.rotord")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	setDefaults()
	bindEnvVars()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if isDevelopment() {
		applyDevelopmentOverrides(&config)
	}

	return &config, nil
}

// setDefaults sets all configuration defaults.
func setDefaults() {
	// Watch defaults
	viper.SetDefault("watch.directory", "")
	viper.SetDefault("watch.families", []string{})
	viper.SetDefault("watch.max_files", 3)
	viper.SetDefault("watch.delete_obsolete_archives", true)
	viper.SetDefault("watch.delete_obsolete_logs", true)
	viper.SetDefault("watch.shutdown_drain_deadline", 5*time.Second)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.force_colors", false)

	viper.SetDefault("logging.file.enabled", true)
	viper.SetDefault("logging.file.base_path", "logs")

	viper.SetDefault("logging.rotation.max_size", 100) // 100MB
	viper.SetDefault("logging.rotation.max_age", 1)     // 1 day
	viper.SetDefault("logging.rotation.max_backups", 30)
	viper.SetDefault("logging.rotation.compress", true)
	viper.SetDefault("logging.rotation.compress_after", 1)

	viper.SetDefault("logging.separation.enabled", true)
	viper.SetDefault("logging.separation.error_log", true)

	viper.SetDefault("logging.async.enabled", true)
	viper.SetDefault("logging.async.buffer_size", 1000)
	viper.SetDefault("logging.async.flush_interval", "5s")
	viper.SetDefault("logging.async.shutdown_timeout", "10s")

	viper.SetDefault("logging.metrics.enabled", true)
	viper.SetDefault("logging.metrics.include_caller", true)
}

// bindEnvVars binds environment variables.
func bindEnvVars() {
	viper.SetEnvPrefix("ROTORD")
	viper.AutomaticEnv()

	viper.BindEnv("watch.directory", "ROTORD_WATCH_DIRECTORY")
	viper.BindEnv("watch.families", "ROTORD_WATCH_FAMILIES")
	viper.BindEnv("watch.max_files", "ROTORD_WATCH_MAX_FILES")
	viper.BindEnv("watch.delete_obsolete_archives", "ROTORD_WATCH_DELETE_OBSOLETE_ARCHIVES")
	viper.BindEnv("watch.delete_obsolete_logs", "ROTORD_WATCH_DELETE_OBSOLETE_LOGS")

	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format", "LOG_FORMAT")
	viper.BindEnv("logging.file.enabled", "LOG_FILE_ENABLED")
	viper.BindEnv("logging.file.base_path", "LOG_FILE_PATH")
	viper.BindEnv("logging.async.enabled", "LOG_ASYNC_ENABLED")
	viper.BindEnv("logging.metrics.enabled", "LOG_METRICS_ENABLED")
}

// isDevelopment checks if running in development mode.
func isDevelopment() bool {
	env := strings.ToLower(os.Getenv("ENV"))
	return env == "" || env == "development" || env == "dev"
}

// applyDevelopmentOverrides applies development-specific configuration.
func applyDevelopmentOverrides(config *Config) {
	if config.Development.Logger.Level != "" {
		config.Logger.Level = config.Development.Logger.Level
	}
}

// Validate validates the configuration. A missing watch directory or an
// overlapping family name fails fast here rather than at runtime.
func (c *Config) Validate() error {
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config: %w", err)
	}

	return nil
}

// Validate validates the watch configuration.
func (w *WatchConfig) Validate() error {
	if w.Directory == "" {
		return fmt.Errorf("directory is required")
	}

	info, err := os.Stat(w.Directory)
	if err != nil {
		return fmt.Errorf("watch directory %s: %w", w.Directory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory %s is not a directory", w.Directory)
	}

	if len(w.Families) == 0 {
		return fmt.Errorf("at least one family is required")
	}

	for i, a := range w.Families {
		if a == "" {
			return fmt.Errorf("family names must not be empty")
		}
		for j, b := range w.Families {
			if i == j {
				continue
			}
			if strings.Contains(a, b) {
				return fmt.Errorf("family %q contains family %q as a substring; families must not overlap", a, b)
			}
		}
	}

	if w.MaxFiles < 1 {
		return fmt.Errorf("max_files must be at least 1")
	}

	if w.ShutdownDrainDeadline.ToDuration() <= 0 {
		return fmt.Errorf("shutdown_drain_deadline must be positive")
	}

	return nil
}
