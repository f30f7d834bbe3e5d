// Package mailtrust exposes embedded assets that are shared between the CLI
// and tests, currently the database migration files.
package mailtrust

import "embed"

// Migrations holds the goose migration files applied by the migrate command.
//
//go:embed migrations/*.sql
var Migrations embed.FS
