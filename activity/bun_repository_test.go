package activity

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestRepository_LogAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)

	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	projectID := uuid.New()
	event := types.ActivityRecord{
		ActorID:    uuid.New(),
		ProjectID:  projectID,
		Verb:       "default_view.set",
		ObjectType: "default_view",
		ObjectID:   "traces",
		Channel:    "default_views",
		Data: map[string]any{
			"view_id": "preset-1",
			"scope":   "project",
		},
	}
	require.NoError(t, store.Log(ctx, event))

	page, err := store.ListActivity(ctx, types.ActivityFilter{
		ProjectID:  projectID,
		Verbs:      []string{"default_view.set"},
		Pagination: types.Pagination{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	require.Equal(t, 1, page.Total)
	require.False(t, page.HasMore)
	require.Equal(t, "default_view.set", page.Records[0].Verb)
	require.Equal(t, "preset-1", page.Records[0].Data["view_id"])
	require.NotEqual(t, uuid.Nil, page.Records[0].ID)
	require.False(t, page.Records[0].OccurredAt.IsZero())
}

func TestRepository_LogMasksSensitiveData(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db, Masker: DefaultMasker()})
	require.NoError(t, err)

	projectID := uuid.New()
	require.NoError(t, store.Log(ctx, types.ActivityRecord{
		ActorID:   uuid.New(),
		ProjectID: projectID,
		Verb:      "default_view.set",
		Data:      map[string]any{"token": "abcd1234", "view_id": "preset-1"},
	}))

	page, err := store.ListActivity(ctx, types.ActivityFilter{ProjectID: projectID})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	require.NotEqual(t, "abcd1234", page.Records[0].Data["token"])
}

func TestRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	clock := &stepClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store, err := NewRepository(RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)

	projectID := uuid.New()
	actorA := uuid.New()
	actorB := uuid.New()
	require.NoError(t, store.Log(ctx, types.ActivityRecord{ActorID: actorA, ProjectID: projectID, Verb: "default_view.set", ObjectID: "traces"}))
	require.NoError(t, store.Log(ctx, types.ActivityRecord{ActorID: actorB, ProjectID: projectID, Verb: "default_view.clear", ObjectID: "traces"}))
	require.NoError(t, store.Log(ctx, types.ActivityRecord{ActorID: actorA, ProjectID: projectID, Verb: "default_view.set", ObjectID: "spans"}))
	require.NoError(t, store.Log(ctx, types.ActivityRecord{ActorID: actorA, ProjectID: uuid.New(), Verb: "default_view.set", ObjectID: "traces"}))

	page, err := store.ListActivity(ctx, types.ActivityFilter{ProjectID: projectID})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, "spans", page.Records[0].ObjectID, "newest first")

	page, err = store.ListActivity(ctx, types.ActivityFilter{ProjectID: projectID, ActorID: actorB})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	require.Equal(t, "default_view.clear", page.Records[0].Verb)

	page, err = store.ListActivity(ctx, types.ActivityFilter{ProjectID: projectID, ObjectID: "traces"})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)

	since := time.Date(2026, 1, 1, 0, 0, 2, 0, time.UTC)
	page, err = store.ListActivity(ctx, types.ActivityFilter{ProjectID: projectID, Since: &since})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
}

func TestRepository_ListCursorPagination(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	clock := &stepClock{now: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	store, err := NewRepository(RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)

	projectID := uuid.New()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.Log(ctx, types.ActivityRecord{
			ActorID:   uuid.New(),
			ProjectID: projectID,
			Verb:      "default_view.set",
			ObjectID:  name,
		}))
	}

	first, err := store.ListActivity(ctx, types.ActivityFilter{
		ProjectID:  projectID,
		Pagination: types.Pagination{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.Records, 2)
	require.True(t, first.HasMore)
	require.NotNil(t, first.NextCursor)
	require.Equal(t, "c", first.Records[0].ObjectID)

	second, err := store.ListActivity(ctx, types.ActivityFilter{
		ProjectID:  projectID,
		Cursor:     first.NextCursor,
		Pagination: types.Pagination{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, second.Records, 1)
	require.False(t, second.HasMore)
	require.Equal(t, "a", second.Records[0].ObjectID)
}

func TestNewRepositoryRequiresStorage(t *testing.T) {
	_, err := NewRepository(RepositoryConfig{})
	require.Error(t, err)
}

func newTestActivityDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyActivityDDL(t *testing.T, db *bun.DB) {
	content, err := os.ReadFile("../data/sql/migrations/sqlite/00011_default_view_activity.up.sql")
	require.NoError(t, err)
	for _, stmt := range splitStatements(string(content)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}
