package migrations

import "embed"

// FS contains embedded SQLite migrations for gang storage.
//
//go:embed *.sql
var FS embed.FS
