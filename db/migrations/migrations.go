// Package migrations embeds the schema migration files.
package migrations

import "embed"

// Files holds the ordered *.sql migration scripts.
//
//go:embed *.sql
var Files embed.FS
