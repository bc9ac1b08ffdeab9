// Package migrations embeds the goose SQL migrations of the local store.
// SQLite files sit at the root, Postgres ones under postgres/.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

//go:embed postgres/*.sql
var Postgres embed.FS
