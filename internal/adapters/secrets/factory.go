package secrets

import (
	"context"
	"fmt"

	"github.com/kevin07696/subs-tracker/internal/config"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
	"go.uber.org/zap"
)

// EnvPasswordVariable is read by the env backend for the database password
const EnvPasswordVariable = "DB_PASSWORD"

// NewStore builds the configured backend wrapped in the TTL cache
func NewStore(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretStore, error) {
	var (
		store ports.SecretStore
		err   error
	)

	switch cfg.Backend {
	case "", "env":
		store = NewEnvStore()
	case "file":
		store = NewLocalStore(cfg.LocalDir, logger)
	case "aws":
		store, err = NewAWSStore(ctx, AWSConfig{Region: cfg.AWSRegion, Endpoint: cfg.AWSEndpoint}, logger)
	case "vault":
		store, err = NewVaultStore(VaultConfig{
			Address:   cfg.VaultAddress,
			Token:     cfg.VaultToken,
			MountPath: cfg.VaultMount,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return NewCachedStore(store, cfg.CacheTTL), nil
}

// DatabasePassword resolves the database password through the store.
// The env backend reads DB_PASSWORD; the others read the configured path.
func DatabasePassword(ctx context.Context, store ports.SecretStore, cfg config.SecretsConfig) (string, error) {
	path := cfg.PasswordPath
	if cfg.Backend == "" || cfg.Backend == "env" {
		path = EnvPasswordVariable
	}
	password, err := store.GetSecret(ctx, path)
	if err != nil {
		return "", fmt.Errorf("resolve database password: %w", err)
	}
	return password, nil
}
