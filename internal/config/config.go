// Package config loads studykit settings from defaults, an optional
// studykit.yaml, an optional .env file and STUDYKIT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pbaille/studykit/internal/domain"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STUDYKIT"

// Config holds all application configuration.
type Config struct {
	DataDir  string                  `mapstructure:"data_dir" validate:"required"`
	Log      LogConfig               `mapstructure:"log"`
	Database DatabaseConfig          `mapstructure:"database"`
	Pomodoro domain.PomodoroSettings `mapstructure:"pomodoro"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// DatabaseConfig locates the relational flashcard database. Path is used by
// sqlite, URL by the server drivers.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres mysql"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url" validate:"required_unless=Driver sqlite"`
}

type options struct {
	configFile string
	envFile    string
	overrides  map[string]any
}

// Option customizes Load.
type Option func(*options)

// WithConfigFile reads an explicit config file instead of searching for
// studykit.yaml. A missing explicit file is an error.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithEnvFile loads path instead of ./.env.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithOverride forces key to value, taking precedence over every other
// source. Command line flags use it.
func WithOverride(key string, value any) Option {
	return func(o *options) {
		if o.overrides == nil {
			o.overrides = make(map[string]any)
		}
		o.overrides[key] = value
	}
}

// Load builds the configuration. Precedence, highest first: overrides,
// environment, config file, defaults.
func Load(opts ...Option) (*Config, error) {
	o := options{envFile: ".env"}
	for _, opt := range opts {
		opt(&o)
	}

	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range o.overrides {
		v.Set(key, value)
	}

	v.SetConfigType("yaml")
	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("studykit")
		v.AddConfigPath(".")
		v.AddConfigPath(expandHome(v.GetString("data_dir")))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Database.Path == "" && cfg.DataDir != "" {
		cfg.Database.Path = filepath.Join(cfg.DataDir, "flashcard.db")
	} else {
		cfg.Database.Path = expandHome(cfg.Database.Path)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "")
	v.SetDefault("database.url", "")

	p := domain.DefaultPomodoroSettings()
	v.SetDefault("pomodoro.work_minutes", p.WorkMinutes)
	v.SetDefault("pomodoro.short_break", p.ShortBreak)
	v.SetDefault("pomodoro.long_break", p.LongBreak)
	v.SetDefault("pomodoro.cycles_before_long", p.CyclesBeforeLong)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studykit"
	}
	return filepath.Join(home, ".studykit")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

