// Package shop exposes module-level embedded assets.
package shop

import "embed"

// Migrations holds the embedded goose SQL migrations applied by the migrate
// subcommand and by storage tests.
//
//go:embed migrations/*.sql
var Migrations embed.FS
