package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	tableviews "github.com/goliatone/go-tableviews"
	"github.com/goliatone/go-tableviews/activity"
	"github.com/goliatone/go-tableviews/defaultviews"
	"github.com/goliatone/go-tableviews/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)

func dialectName(driver string) (string, error) {
	name, err := migrations.NormalizeDialect(driver)
	if err != nil {
		return "", fmt.Errorf("tableviews: unsupported driver %q", driver)
	}
	return name, nil
}

type openOptions struct {
	migrate   bool
	bootstrap bool
}

// openDatabase connects through go-persistence-bun and, when requested, runs
// the registered migrations and validates the resulting schema.
func openDatabase(ctx context.Context, cfg PersistenceConfig, opts openOptions, logger glog.Logger) (*bun.DB, error) {
	name, err := dialectName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var (
		driverName string
		dialect    schema.Dialect
	)
	switch name {
	case dialectPostgres:
		driverName, dialect = "pgx", pgdialect.New()
	default:
		driverName, dialect = "sqlite3", sqlitedialect.New()
	}

	sqlDB, err := sql.Open(driverName, cfg.GetServer())
	if err != nil {
		return nil, err
	}
	if name == dialectSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := pingWithTimeout(ctx, sqlDB, cfg); err != nil {
		sqlDB.Close()
		return nil, err
	}

	persistence.RegisterModel((*defaultviews.Record)(nil))
	persistence.RegisterModel((*activity.LogEntry)(nil))

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	client.SetLogger(logger)

	if !opts.migrate {
		return client.DB(), nil
	}

	sources, err := migrationSources(opts.bootstrap)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	for _, source := range sources {
		client.RegisterDialectMigrations(
			source,
			persistence.WithDialectSourceLabel("."),
			persistence.WithValidationTargets(dialectPostgres, dialectSQLite),
		)
	}
	if err := client.ValidateDialects(ctx); err != nil {
		logger.Warn("dialect validation failed", "error", err)
	}
	if err := client.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if report := client.Report(); report != nil && !report.IsZero() {
		logger.Info("migrations applied", "report", strings.TrimSpace(report.String()))
	}
	if err := migrations.ValidateSchema(ctx, sqlDB, name, schemaChecks(opts.bootstrap)...); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return client.DB(), nil
}

func pingWithTimeout(ctx context.Context, db *sql.DB, cfg PersistenceConfig) error {
	if cfg.PingTimeout <= 0 {
		return db.PingContext(ctx)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	return db.PingContext(pingCtx)
}

// migrationSources lists the filesystems to run, bootstrap tables first so
// foreign keys resolve on PostgreSQL.
func migrationSources(withBootstrap bool) ([]fs.FS, error) {
	var sources []fs.FS
	if withBootstrap {
		bootstrapFS, err := fs.Sub(tableviews.GetBootstrapMigrationsFS(), "data/sql/bootstrap")
		if err != nil {
			return nil, err
		}
		sources = append(sources, bootstrapFS)
	}
	return append(sources, migrations.Filesystems()...), nil
}

func schemaChecks(withBootstrap bool) []migrations.SchemaCheck {
	if withBootstrap {
		return append(append([]migrations.SchemaCheck{}, migrations.HostSchemaChecks...), migrations.CoreSchemaChecks...)
	}
	return migrations.CoreSchemaChecks
}
