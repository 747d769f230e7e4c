// Package migrations contains the database migrations.
package migrations

import (
	"embed"
)

//go:embed *.sql
var FS embed.FS
