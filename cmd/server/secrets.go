package main

import (
	"context"
	"fmt"

	"github.com/kevin07696/subs-tracker/internal/adapters/secrets"
	"github.com/kevin07696/subs-tracker/internal/config"
	"go.uber.org/zap"
)

// resolveDatabaseURL returns DATABASE_URL when set. Otherwise the password is
// read from the configured secrets backend (env, file, aws or vault) and the
// URL is built from the DB_* settings.
func resolveDatabaseURL(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, error) {
	if cfg.Database.URL != "" {
		logger.Info("Using DATABASE_URL for database connection")
		return cfg.Database.URL, nil
	}

	store, err := secrets.NewStore(ctx, cfg.Secrets, logger)
	if err != nil {
		return "", fmt.Errorf("init secrets backend: %w", err)
	}

	password, err := secrets.DatabasePassword(ctx, store, cfg.Secrets)
	if err != nil {
		return "", err
	}

	logger.Info("Database password resolved",
		zap.String("backend", cfg.Secrets.Backend),
	)
	return cfg.Database.ConnectionString(password), nil
}
