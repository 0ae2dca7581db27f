// Package migrations embeds the SQL schema migrations into the binary.
package migrations

import "embed"

//go:embed *.sql
var files embed.FS

// FS holds every migration file at its root, ready for database.Migrate.
var FS = files
