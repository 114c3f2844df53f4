package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevin07696/subs-tracker/internal/domain/ports"
	"go.uber.org/zap"
)

var _ ports.SecretStore = (*LocalStore)(nil)

// LocalStore reads secrets from files under a base directory.
// For development only; production uses AWS Secrets Manager or Vault.
type LocalStore struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalStore creates a filesystem-backed store rooted at basePath
func NewLocalStore(basePath string, logger *zap.Logger) *LocalStore {
	return &LocalStore{basePath: basePath, logger: logger}
}

// GetSecret reads basePath/path. A JSON object with a "value" key is
// unwrapped; anything else is returned as trimmed plain text.
func (s *LocalStore) GetSecret(_ context.Context, path string) (string, error) {
	clean := filepath.Clean("/" + path)
	filePath := filepath.Join(s.basePath, clean)

	s.logger.Debug("Reading secret from filesystem", zap.String("path", path))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("secret not found: %s", path)
		}
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Value != "" {
		return wrapped.Value, nil
	}
	return strings.TrimSpace(string(data)), nil
}
