package tableviews

import "embed"

// MigrationsFS contains SQL migrations for both PostgreSQL and SQLite.
//
// The migrations are organized in a dialect-aware structure:
//   - Root files (data/sql/migrations/*.sql) contain PostgreSQL migrations
//   - SQLite overrides are in data/sql/migrations/sqlite/*.sql
//
// The go-persistence-bun loader selects the matching files for the dialect in
// use.
//
// Usage:
//
//	import "io/fs"
//	import tableviews "github.com/goliatone/go-tableviews"
//	import persistence "github.com/goliatone/go-persistence-bun"
//
//	migrationsFS, _ := fs.Sub(tableviews.GetCoreMigrationsFS(), "data/sql/migrations")
//	client.RegisterDialectMigrations(
//	    migrationsFS,
//	    persistence.WithDialectSourceLabel("."),
//	    persistence.WithValidationTargets("postgres", "sqlite"),
//	)
//
//go:embed data/sql/migrations
var MigrationsFS embed.FS

// CoreMigrationsFS contains the default_views and default_view_activity
// tables. Foreign keys expect host owned projects and users tables.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var CoreMigrationsFS embed.FS

// BootstrapMigrationsFS contains minimal projects and users tables for hosts
// that do not already own them (standalone CLI, tests).
//
//go:embed data/sql/bootstrap
var BootstrapMigrationsFS embed.FS

// GetMigrationsFS exposes the SQL migration files so host applications can
// register them with go-persistence-bun (or another migration runner).
func GetMigrationsFS() embed.FS {
	return MigrationsFS
}

// GetCoreMigrationsFS returns the core migrations.
func GetCoreMigrationsFS() embed.FS {
	return CoreMigrationsFS
}

// GetBootstrapMigrationsFS returns the projects/users bootstrap migrations.
func GetBootstrapMigrationsFS() embed.FS {
	return BootstrapMigrationsFS
}
