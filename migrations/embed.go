// Package migrations embeds SQL migration files.
package migrations

import "embed"

// PostgresFS contains the postgres schema migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// PostgresDir is the directory within PostgresFS where migrations live.
const PostgresDir = "postgres"
