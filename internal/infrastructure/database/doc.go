// Package database provides SQLite connectivity for Sparky Core.
//
// The database only backs the durable response cache (cache.backend: sqlite),
// so cached device payloads survive a restart instead of forcing a burst of
// live fetches against the rate-limited device cloud.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Additive schema migrations read from an fs.FS (see package migrations)
//   - Lifecycle and health checks
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
