package secrets

import (
	"context"
	"fmt"
	"os"

	"github.com/kevin07696/subs-tracker/internal/domain/ports"
)

var _ ports.SecretStore = (*EnvStore)(nil)

// EnvStore reads secrets from environment variables; the path is the variable name
type EnvStore struct {
	lookup func(string) (string, bool)
}

// NewEnvStore creates a store backed by the process environment
func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

// GetSecret returns the value of the named variable; unset or empty is an error
func (s *EnvStore) GetSecret(_ context.Context, path string) (string, error) {
	value, ok := s.lookup(path)
	if !ok || value == "" {
		return "", fmt.Errorf("secret not found: environment variable %s is not set", path)
	}
	return value, nil
}
