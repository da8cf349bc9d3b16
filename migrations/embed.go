// Package migrations embeds the SQL schema migrations so binaries can run
// them at startup without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS that goose reads migrations from.
const Dir = "."
