// Package db embeds the goose migrations applied at startup.
package db

import "embed"

// MigrationsDir is the directory inside Migrations holding the .sql files.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS
