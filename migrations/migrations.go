// Package migrations embeds the engine's SQL schema migrations.
package migrations

import "embed"

// FS holds the numbered up/down SQL files read by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
