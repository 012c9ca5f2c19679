package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SchemaCheck describes a table/column requirement.
type SchemaCheck struct {
	Table   string
	Columns []string
}

// HostSchemaChecks lists the host owned tables the default_views foreign keys
// point at.
var HostSchemaChecks = []SchemaCheck{
	{Table: "projects", Columns: []string{"id"}},
	{Table: "users", Columns: []string{"id"}},
}

// CoreSchemaChecks lists the tables created by the core migrations.
var CoreSchemaChecks = []SchemaCheck{
	{
		Table: "default_views",
		Columns: []string{
			"id",
			"project_id",
			"user_id",
			"view_name",
			"view_id",
			"created_at",
			"updated_at",
		},
	},
	{
		Table: "default_view_activity",
		Columns: []string{
			"id",
			"actor_id",
			"project_id",
			"verb",
			"object_id",
			"data",
			"created_at",
		},
	},
}

// SchemaValidationError summarizes missing tables/columns.
type SchemaValidationError struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

func (e *SchemaValidationError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if len(e.MissingTables) > 0 {
		parts = append(parts, fmt.Sprintf("missing tables: %s", strings.Join(e.MissingTables, ", ")))
	}
	if len(e.MissingColumns) > 0 {
		tables := make([]string, 0, len(e.MissingColumns))
		for table := range e.MissingColumns {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		cols := make([]string, 0, len(tables))
		for _, table := range tables {
			missing := e.MissingColumns[table]
			sort.Strings(missing)
			cols = append(cols, fmt.Sprintf("%s(%s)", table, strings.Join(missing, ", ")))
		}
		parts = append(parts, fmt.Sprintf("missing columns: %s", strings.Join(cols, "; ")))
	}
	if len(parts) == 0 {
		return "schema validation failed"
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// ValidateSchema checks that every table in checks exists with the listed
// columns. An empty checks list validates HostSchemaChecks and
// CoreSchemaChecks.
func ValidateSchema(ctx context.Context, db *sql.DB, dialect string, checks ...SchemaCheck) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	normalized, err := NormalizeDialect(dialect)
	if err != nil {
		return err
	}
	if len(checks) == 0 {
		checks = append(append([]SchemaCheck{}, HostSchemaChecks...), CoreSchemaChecks...)
	}

	missingTables := make([]string, 0)
	missingColumns := make(map[string][]string)
	for _, check := range checks {
		if strings.TrimSpace(check.Table) == "" {
			continue
		}
		cols, err := fetchColumns(ctx, db, normalized, check.Table)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			missingTables = append(missingTables, check.Table)
			continue
		}
		for _, col := range check.Columns {
			col = strings.ToLower(strings.TrimSpace(col))
			if col != "" && !cols[col] {
				missingColumns[check.Table] = append(missingColumns[check.Table], col)
			}
		}
	}

	if len(missingTables) == 0 && len(missingColumns) == 0 {
		return nil
	}
	sort.Strings(missingTables)
	return &SchemaValidationError{
		MissingTables:  missingTables,
		MissingColumns: missingColumns,
	}
}

// NormalizeDialect maps driver names onto "postgres" or "sqlite".
func NormalizeDialect(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql", "pgx":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

func fetchColumns(ctx context.Context, db *sql.DB, dialect, table string) (map[string]bool, error) {
	if dialect == "postgres" {
		return fetchColumnsPostgres(ctx, db, table)
	}
	return fetchColumnsSQLite(ctx, db, table)
}

func fetchColumnsPostgres(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanColumnNames(rows, func(rows *sql.Rows) (string, error) {
		var name string
		err := rows.Scan(&name)
		return name, err
	})
}

func fetchColumnsSQLite(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanColumnNames(rows, func(rows *sql.Rows) (string, error) {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultV   sql.NullString
			primaryKey int
		)
		err := rows.Scan(&cid, &name, &colType, &notNull, &defaultV, &primaryKey)
		return name, err
	})
}

func scanColumnNames(rows *sql.Rows, scan func(*sql.Rows) (string, error)) (map[string]bool, error) {
	cols := make(map[string]bool)
	for rows.Next() {
		name, err := scan(rows)
		if err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}
