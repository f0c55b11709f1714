// Package db opens the gorm connection to PostgreSQL.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"login_backend/internal/feature/identity/domain/entity"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL instance; takes precedence over Host/Port
}

// Opener opens a gorm connection for a DSN. Replaced in tests.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv reads DB_* and INSTANCE_CONNECTION_NAME.
func LoadConfigFromEnv() Config {
	ssl := os.Getenv("DB_SSLMODE")
	if ssl == "" {
		ssl = "disable"
	}
	return Config{
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      ssl,
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// BuildDSN renders a libpq keyword/value DSN.
func BuildDSN(cfg Config) string {
	ssl := cfg.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name, ssl)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, ssl)
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout, interval time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", interval)
		time.Sleep(interval)
	}
}

// postgresOpener enables error translation so unique violations surface as gorm.ErrDuplicatedKey.
func postgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&entity.User{})
}

// OpenDB connects with a 60s retry budget and runs migrations when RUN_MIGRATIONS=true.
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), 60*time.Second, 3*time.Second, postgresOpener)
	if err != nil {
		return nil, err
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		slog.Info("database migrations applied")
	}
	return db, nil
}
