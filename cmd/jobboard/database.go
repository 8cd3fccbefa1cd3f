package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/jobboard/internal/jobboard/config"
	"github.com/gartstein/jobboard/internal/jobboard/db"
	"go.uber.org/zap"
)

// connectDatabase opens the repository, retrying PostgreSQL with exponential
// backoff until DB_CONNECT_TIMEOUT elapses.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	if sqlitePath != "" {
		logger.Info("Using SQLite database", zap.String("path", sqlitePath))
		return db.OpenSQLite(sqlitePath)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.DBConnectTimeout
	if b.MaxElapsedTime <= 0 {
		b.MaxElapsedTime = 30 * time.Second
	}

	var repo *db.Repository
	operation := func() error {
		var err error
		repo, err = db.NewRepository(cfg.Database())
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Database not ready, retrying",
			zap.Error(err),
			zap.Duration("backoff", wait),
		)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("host", cfg.DBHost),
		zap.String("database", cfg.DBName))
	return repo, nil
}

func closeDatabase(repo *db.Repository, logger *zap.Logger) {
	if err := repo.Close(); err != nil {
		logger.Error("Failed to close database", zap.Error(err))
	}
}
