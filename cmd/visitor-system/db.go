package main

import (
	"context"

	"gorm.io/gorm"

	"github.com/thorsignia/visitor-system/internal/infrastructure/db/gormstore"
	"github.com/thorsignia/visitor-system/internal/pkg/config"
)

func storeConfig(cfg *config.Config) gormstore.Config {
	return gormstore.Config{
		DSN:          cfg.Database.URL,
		SQLitePath:   cfg.Database.SQLitePath,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Debug:        cfg.Database.Debug,
	}
}

func (a *app) openDB(ctx context.Context) (*gorm.DB, error) {
	return gormstore.Open(ctx, storeConfig(a.cfg), a.log.With().Str("component", "gorm").Logger())
}
