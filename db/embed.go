// Package db embeds the SQL migration files so the binary can migrate the
// schema without shipping the migrations directory alongside it.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
