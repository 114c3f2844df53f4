// Package migrations holds the goose SQL migrations for the tracker schema.
package migrations

import "embed"

// FS exposes the migration files so the migrate command and integration
// tests can run them without a checkout on disk.
//
//go:embed *.sql
var FS embed.FS
