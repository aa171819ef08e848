// Package db exposes the SQL migrations and seed catalog embedded in the binaries.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed seed/catalog.yaml
var SeedCatalog []byte
