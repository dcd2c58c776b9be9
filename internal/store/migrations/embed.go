package migrations

import "embed"

// FS contains embedded SQLite migrations for the statement archive.
//
//go:embed *.sql
var FS embed.FS
