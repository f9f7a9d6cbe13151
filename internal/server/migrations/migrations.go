// Package migrations embeds the goose SQL migrations, one directory per
// database dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite3/*.sql
var Migrations embed.FS

// Dir returns the migrations directory for a database driver name.
func Dir(driver string) string {
	if driver == "sqlite3" {
		return "sqlite3"
	}
	return "postgres"
}
