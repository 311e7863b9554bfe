// Package migrations embeds the journal's SQL migration files into the
// binary so the shell can create its schema without files on disk.
package migrations

import "embed"

// FS holds every *.sql file in this directory at its root.
//
//go:embed *.sql
var FS embed.FS
