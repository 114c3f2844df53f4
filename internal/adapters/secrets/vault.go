package secrets

import (
	"context"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
	"go.uber.org/zap"
)

var _ ports.SecretStore = (*VaultStore)(nil)

// VaultConfig contains configuration for the HashiCorp Vault store
type VaultConfig struct {
	Address   string
	Token     string
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// KV version: "v1" or "v2" (default: "v2")
	KVVersion string
}

// logicalReader is the subset of *vault.Logical the store uses
type logicalReader interface {
	ReadWithContext(ctx context.Context, path string) (*vault.Secret, error)
}

// VaultStore reads secrets from a Vault KV engine. The value is taken from
// the "value" key of the secret data.
type VaultStore struct {
	logical logicalReader
	cfg     VaultConfig
	logger  *zap.Logger
}

// NewVaultStore creates a token-authenticated Vault client
func NewVaultStore(cfg VaultConfig, logger *zap.Logger) (*VaultStore, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required for Vault token auth")
	}
	if cfg.MountPath == "" {
		cfg.MountPath = "secret"
	}
	if cfg.KVVersion == "" {
		cfg.KVVersion = "v2"
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	logger.Info("Vault store initialized",
		zap.String("address", cfg.Address),
		zap.String("mount_path", cfg.MountPath),
		zap.String("kv_version", cfg.KVVersion),
	)

	return &VaultStore{logical: client.Logical(), cfg: cfg, logger: logger}, nil
}

// GetSecret reads path relative to the configured mount
func (s *VaultStore) GetSecret(ctx context.Context, path string) (string, error) {
	fullPath := fmt.Sprintf("%s/%s", s.cfg.MountPath, path)
	if s.cfg.KVVersion == "v2" {
		fullPath = fmt.Sprintf("%s/data/%s", s.cfg.MountPath, path)
	}

	start := time.Now()
	secret, err := s.logical.ReadWithContext(ctx, fullPath)
	if err != nil {
		s.logger.Error("Failed to retrieve secret from Vault", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret not found: %s", path)
	}

	data := secret.Data
	if s.cfg.KVVersion == "v2" {
		// KV v2 wraps the payload in a "data" field
		inner, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("invalid secret format from Vault")
		}
		data = inner
	}

	value, ok := data["value"].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("secret %s has no \"value\" key", path)
	}

	s.logger.Info("Secret retrieved successfully",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
	)
	return value, nil
}
