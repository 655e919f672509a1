// Package migrations ships the SQL schema inside the binary so the server can
// migrate without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
