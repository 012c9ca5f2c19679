package migrations_test

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"sort"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-tableviews/migrations"
	_ "github.com/goliatone/go-tableviews/migrations/bootstrap"
)

func TestMigrationsApplyToSQLite(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	filesystems := migrations.Filesystems()
	if len(filesystems) < 2 {
		t.Fatalf("expected core and bootstrap filesystems, got %d", len(filesystems))
	}
	for _, fsys := range filesystems {
		if err := applyFilesystem(ctx, db, fsys); err != nil {
			t.Fatalf("failed to apply migrations: %v", err)
		}
	}

	if err := migrations.ValidateSchema(ctx, db, "sqlite3"); err != nil {
		t.Fatalf("schema validation failed: %v", err)
	}

	projectID := "11111111-1111-1111-1111-111111111111"
	insert := `INSERT INTO default_views (id, project_id, user_id, view_name, view_id) VALUES (?, ?, NULL, 'traces', ?)`
	if _, err := db.ExecContext(ctx, insert, "22222222-2222-2222-2222-222222222222", projectID, "view-a"); err != nil {
		t.Fatalf("failed to insert project default: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "33333333-3333-3333-3333-333333333333", projectID, "view-b"); err == nil {
		t.Fatal("expected unique index to reject a second project scoped pointer")
	}
}

func TestValidateSchemaReportsMissingTables(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	err = migrations.ValidateSchema(context.Background(), db, "sqlite", migrations.HostSchemaChecks...)
	var schemaErr *migrations.SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaValidationError, got %v", err)
	}
	if len(schemaErr.MissingTables) != 2 {
		t.Fatalf("expected projects and users to be missing, got %v", schemaErr.MissingTables)
	}
	if _, err := migrations.NormalizeDialect("mysql"); err == nil {
		t.Fatal("expected unsupported dialect error")
	}
}

func applyFilesystem(ctx context.Context, db *sql.DB, filesystem fs.FS) error {
	entries, err := fs.Glob(filesystem, "sqlite/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(entries)
	for _, entry := range entries {
		sqlBytes, err := fs.ReadFile(filesystem, entry)
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(string(sqlBytes)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func splitStatements(sql string) []string {
	var (
		out     []string
		builder strings.Builder
	)
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			out = append(out, builder.String())
			builder.Reset()
		}
	}
	if strings.TrimSpace(builder.String()) != "" {
		out = append(out, builder.String())
	}
	return out
}
