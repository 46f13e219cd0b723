package notifications

import "embed"

// Migrations holds the goose migrations for PostgresStorage under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS
