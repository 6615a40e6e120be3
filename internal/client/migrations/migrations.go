// Package migrations embeds the goose migrations for the SQL storage backends.
package migrations

import "embed"

// FS holds one directory of migrations per dialect: "sqlite" and "postgres".
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

const (
	DirSQLite   = "sqlite"
	DirPostgres = "postgres"
)
