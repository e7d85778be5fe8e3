// Package migrations embeds the goose migrations for the refresh token table.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
