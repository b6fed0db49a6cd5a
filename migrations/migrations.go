// migrations/migrations.go
package migrations

import "embed"

// FS carries the SQL migration files into the binary.
//
//go:embed *.sql
var FS embed.FS
