// Package migrations embeds the SQL schema migrations applied by
// cmd/migrate at deploy time.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
