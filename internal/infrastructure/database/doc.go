// Package database provides SQLite connectivity for alphasign.
//
// It opens the database with WAL mode and a busy timeout, limits the pool
// to a single writer, and applies embedded schema migrations in version
// order.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
