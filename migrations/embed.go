// Package migrations embeds the SQL schema for the durable response cache.
//
// The files are compiled into the binary and applied at startup with
// database.DB.Migrate(ctx, migrations.FS).
package migrations

import "embed"

// FS holds every *.up.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
