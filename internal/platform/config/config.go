// Package config loads application configuration from environment variables.
// All variables use the GTX_ prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	Build    BuildConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
}

// BuildConfig holds batch build settings.
type BuildConfig struct {
	Workers   int    `env:"GTX_BUILD_WORKERS" validate:"min=1,max=64"`
	ThemePath string `env:"GTX_THEME_PATH" validate:"omitempty,dir"`
	Compress  bool   `env:"GTX_BUILD_COMPRESS"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL keeps
// the build history in memory.
type DatabaseConfig struct {
	URL      string `env:"GTX_DATABASE_URL" validate:"omitempty,url"`
	MaxConns int    `env:"GTX_DATABASE_MAX_CONNS" validate:"min=1,gtefield=MinConns"`
	MinConns int    `env:"GTX_DATABASE_MIN_CONNS" validate:"min=0"`
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// fingerprint cache.
type CacheConfig struct {
	URL      string `env:"GTX_CACHE_URL" validate:"omitempty,url"`
	TTLHours int    `env:"GTX_CACHE_TTL_HOURS" validate:"min=0"` // 0 keeps fingerprints forever
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"GTX_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `env:"GTX_LOG_FORMAT" validate:"oneof=json text"`
}

// Load reads configuration from environment variables with GTX_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Build: BuildConfig{
			Workers:   envInt("GTX_BUILD_WORKERS", 4),
			ThemePath: envStr("GTX_THEME_PATH", ""),
			Compress:  envBool("GTX_BUILD_COMPRESS", false),
		},
		Database: DatabaseConfig{
			URL:      envStr("GTX_DATABASE_URL", ""),
			MaxConns: envInt("GTX_DATABASE_MAX_CONNS", 4),
			MinConns: envInt("GTX_DATABASE_MIN_CONNS", 0),
		},
		Cache: CacheConfig{
			URL:      envStr("GTX_CACHE_URL", ""),
			TTLHours: envInt("GTX_CACHE_TTL_HOURS", 720),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envStr("GTX_LOG_LEVEL", "info")),
			Format: strings.ToLower(envStr("GTX_LOG_FORMAT", "text")),
		},
	}

	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return err
	}

	messages := make([]string, len(invalid))
	for i, fe := range invalid {
		messages[i] = describe(fe)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be at %s %s, got %v", fe.Field(), map[string]string{"min": "least", "max": "most"}[fe.Tag()], fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than GTX_DATABASE_MIN_CONNS, got %v", fe.Field(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", fe.Field(), fe.Value())
	case "dir":
		return fmt.Sprintf("%s must point to an existing directory, got %q", fe.Field(), fe.Value())
	}
	return fmt.Sprintf("%s failed the '%s' check", fe.Field(), fe.Tag())
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
