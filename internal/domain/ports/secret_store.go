package ports

import "context"

// SecretStore reads secret values such as the database password.
// Path format depends on the backend: an environment variable name, an AWS
// secret name or ARN, or a Vault KV path relative to the mount.
type SecretStore interface {
	GetSecret(ctx context.Context, path string) (string, error)
}
