package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

type (
	Config struct {
		HTTP
		Database
		Redis
		TourismAPI
		Global
	}

	HTTP struct {
		Port        string
		BearerToken string
	}
	Database struct {
		URL           string
		MigrationsDir string
	}
	Redis struct {
		URL string // empty disables the cross-process change feed
	}
	TourismAPI struct {
		URL     string
		Timeout time.Duration
		Pins    []string // sha256/<base64 SPKI>; empty disables pinning
	}
	Global struct {
		LogLevel             slog.Level
		FavoriteWriteTimeout time.Duration
		ShutdownTimeout      time.Duration
	}
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingBearerToken = errors.New("BEARER_TOKEN is required")
)

// Load reads the configuration from the environment.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", "8080")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("tourism_api_url", tourism.DefaultBaseURL)
	v.SetDefault("tourism_api_timeout", tourism.DefaultTimeout.String())
	v.SetDefault("tourism_api_pins", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("favorite_write_timeout", "10s")
	v.SetDefault("shutdown_timeout", "30s")

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return Config{}, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	cfg := Config{
		HTTP: HTTP{
			Port:        v.GetString("PORT"),
			BearerToken: v.GetString("BEARER_TOKEN"),
		},
		Database: Database{
			URL:           v.GetString("DATABASE_URL"),
			MigrationsDir: v.GetString("MIGRATIONS_DIR"),
		},
		Redis: Redis{
			URL: v.GetString("REDIS_URL"),
		},
		TourismAPI: TourismAPI{
			URL:     v.GetString("TOURISM_API_URL"),
			Timeout: v.GetDuration("TOURISM_API_TIMEOUT"),
			Pins:    splitList(v.GetString("TOURISM_API_PINS")),
		},
		Global: Global{
			LogLevel:             level,
			FavoriteWriteTimeout: v.GetDuration("FAVORITE_WRITE_TIMEOUT"),
			ShutdownTimeout:      v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
	}

	if cfg.Database.URL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	if cfg.TourismAPI.Timeout <= 0 {
		return Config{}, fmt.Errorf("TOURISM_API_TIMEOUT must be positive, got %q", v.GetString("TOURISM_API_TIMEOUT"))
	}

	return cfg, nil
}

// ValidateServer checks the keys only the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.HTTP.BearerToken == "" {
		return ErrMissingBearerToken
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
