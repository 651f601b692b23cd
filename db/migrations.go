// Package db ships the catalog schema migrations.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
