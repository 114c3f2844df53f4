// Package secrets provides ports.SecretStore backends: environment variables,
// a local directory for development, AWS Secrets Manager and HashiCorp Vault.
package secrets
