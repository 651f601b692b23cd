package main

import (
	"io/fs"
	"os"

	"bookstore/db"
)

// migrationSource returns the filesystem goose reads from and the directory
// inside it. MIGRATIONS_DIR switches from the embedded set to the local disk.
func migrationSource() (fs.FS, string) {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return nil, v
	}
	return db.Migrations, "migrations"
}
