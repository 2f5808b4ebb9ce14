// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"agency_backend/internal/platform/db"
	"agency_backend/internal/platform/redis"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is not set.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// RateLimit configures the two request limiters.
type RateLimit struct {
	Window  time.Duration
	Max     int
	AuthMax int
}

// Config holds every runtime setting of the server.
type Config struct {
	Port            string
	Env             string
	JWTSecret       string
	AdminSetupToken string
	FrontendURL     string
	BcryptCost      int
	DB              db.Config
	Redis           redis.Config
	RateLimit       RateLimit
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (if present) into the process environment and builds a Config.
// Variables already set in the environment take precedence over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			slog.Debug(".env not found; using system environment variables", "file", f)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "5000"),
		Env:             getEnv("APP_ENV", EnvDevelopment),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AdminSetupToken: os.Getenv("ADMIN_SETUP_TOKEN"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		DB: db.Config{
			Driver:     getEnv("DB_DRIVER", db.DriverSQLite),
			SQLitePath: getEnv("SQLITE_PATH", "agency.db"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Name:       getEnv("DB_NAME", "agency"),
			SSLMode:    os.Getenv("DB_SSLMODE"),
		},
		Redis: redis.Config{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.DB.Driver != db.DriverSQLite && cfg.DB.Driver != db.DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	var err error
	if cfg.DB.RunMigrations, err = getBool("RUN_MIGRATIONS", false); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.RateLimit.Window, err = getDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Max, err = getInt("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimit.AuthMax, err = getInt("AUTH_RATE_LIMIT_MAX", 5); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}
