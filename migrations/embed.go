// Package migrations embeds the SQL schema of the enrollment tables read by the service.
package migrations

import "embed"

// FS holds every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
