// Package database provides the SQLite connection behind the lifecycle
// journal.
//
// This package manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Applying embedded schema migrations in version order
//   - Health checks and lifecycle management
//
// The shell is a single process with one writer, so the pool is pinned to
// one connection.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files live at the root of the supplied filesystem and are
// named YYYYMMDD_HHMMSS_description.up.sql / .down.sql.
package database
