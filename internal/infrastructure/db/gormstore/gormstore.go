// Package gormstore implements the relational repositories on top of gorm.
// Postgres is used when a DSN is configured, a sqlite file otherwise.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	DSN          string // postgres connection string; empty selects sqlite
	SQLitePath   string
	MaxOpenConns int
	Debug        bool
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(cfg), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log, cfg.Debug),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.DSN == "" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Ping(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("gormstore: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("gormstore: ping: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WaitForDB retries Open with exponential backoff, capped at one minute between attempts.
func WaitForDB(ctx context.Context, cfg Config, maxRetries int, initialDelay time.Duration, log zerolog.Logger) (*gorm.DB, error) {
	const maxDelay = time.Minute

	delay := initialDelay
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err := Open(ctx, cfg, log)
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("database is ready")
			return db, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("max_retries", maxRetries).Dur("retry_in", delay).Msg("database not ready")

		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return nil, fmt.Errorf("gormstore: database not ready after %d attempts: %w", maxRetries, lastErr)
}

func dialector(cfg Config) gorm.Dialector {
	if cfg.DSN != "" {
		return postgres.Open(cfg.DSN)
	}
	path := cfg.SQLitePath
	if path == "" {
		path = "visitors.db"
	}
	if !strings.Contains(path, "_foreign_keys") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "_foreign_keys=on"
	}
	return sqlite.Open(path)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
