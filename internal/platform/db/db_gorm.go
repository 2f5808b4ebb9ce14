// Package db opens and migrates the relational store backing user accounts.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agency_backend/internal/feature/auth/domain/entity"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	retryInterval  = 3 * time.Second
	connectTimeout = 60 * time.Second
)

// Config holds connection settings for the database.
type Config struct {
	Driver     string
	SQLitePath string

	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	RunMigrations bool
}

// Opener opens a gorm connection for a DSN. It is swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN returns the connection string for cfg.
// For SQLite it is the database file path.
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.SQLitePath
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open connects to the configured database and runs migrations when enabled.
// SQLite is always migrated because it is used for local development.
func Open(cfg Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var opener Opener
	switch cfg.Driver {
	case DriverPostgres:
		opener = func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), gcfg) }
	case DriverSQLite:
		opener = func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), gcfg) }
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), connectTimeout, opener)
	if err != nil {
		return nil, err
	}
	slog.Info("database connected", "driver", cfg.Driver)

	if cfg.RunMigrations || cfg.Driver == DriverSQLite {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.User{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
