package defaultviews

import (
	"context"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDefaultViewRepository_CacheWrapsRepository(t *testing.T) {
	db := newTestDB(t)
	applyDDL(t, db)

	base := NewRecordRepository(db)
	repo, err := NewRepository(RepositoryConfig{Repository: base}, WithCache(true))
	require.NoError(t, err)

	_, ok := repo.defaultViewStore.(*repositorycache.CachedRepository[*Record])
	require.True(t, ok)
	require.Same(t, base, repo.direct)
}

func TestDefaultViewRepository_CacheDoesNotDoubleWrap(t *testing.T) {
	db := newTestDB(t)
	applyDDL(t, db)

	base := NewRecordRepository(db)
	cacheService, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)
	cached := repositorycache.New(base, cacheService, cache.NewDefaultKeySerializer())

	_, err = NewRepository(RepositoryConfig{Repository: cached}, WithCache(true))
	require.Error(t, err, "a pre-wrapped cache needs the db for uncached reads")

	repo, err := NewRepository(RepositoryConfig{Repository: cached, DB: db}, WithCache(true))
	require.NoError(t, err)

	stored, ok := repo.defaultViewStore.(*repositorycache.CachedRepository[*Record])
	require.True(t, ok)
	require.Same(t, cached, stored)
	_, directCached := repo.direct.(*repositorycache.CachedRepository[*Record])
	require.False(t, directCached)
}

func TestDefaultViewRepository_CachedReadsStayIsolated(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	projectA := uuid.New()
	projectB := uuid.New()
	for projectID, viewID := range map[uuid.UUID]string{projectA: "view-a", projectB: "view-b"} {
		_, err = repo.UpsertDefaultView(ctx, types.DefaultViewKey{
			ProjectID: projectID,
			ViewName:  "traces",
			Scope:     types.DefaultViewScopeProject,
		}, viewID)
		require.NoError(t, err)
	}

	rowsA, err := repo.ListDefaultViews(ctx, types.DefaultViewFilter{ProjectID: projectA, ViewName: "traces"})
	require.NoError(t, err)
	require.Len(t, rowsA, 1)
	require.Equal(t, "view-a", rowsA[0].ViewID)

	rowsB, err := repo.ListDefaultViews(ctx, types.DefaultViewFilter{ProjectID: projectB, ViewName: "traces"})
	require.NoError(t, err)
	require.Len(t, rowsB, 1)
	require.Equal(t, "view-b", rowsB[0].ViewID)

	byA, err := repo.ListDefaultViewsByView(ctx, "view-a")
	require.NoError(t, err)
	require.Len(t, byA, 1)
	require.Equal(t, projectA, byA[0].ProjectID)

	byB, err := repo.ListDefaultViewsByView(ctx, "view-b")
	require.NoError(t, err)
	require.Len(t, byB, 1)
	require.Equal(t, projectB, byB[0].ProjectID)

	removed, err := repo.DeleteDefaultViewsByView(ctx, "view-b")
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	rowsA, err = repo.ListDefaultViews(ctx, types.DefaultViewFilter{ProjectID: projectA, ViewName: "traces"})
	require.NoError(t, err)
	require.Len(t, rowsA, 1, "cleanup of one view must not touch another project's pointer")
}

func TestDefaultViewRepository_GetByIDUsesCache(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	spy := &spyRecordRepository{Repository: NewRecordRepository(db)}
	repo, err := NewRepository(RepositoryConfig{Repository: spy}, WithCache(true))
	require.NoError(t, err)

	saved, err := repo.UpsertDefaultView(ctx, types.DefaultViewKey{
		ProjectID: uuid.New(),
		ViewName:  "traces",
		Scope:     types.DefaultViewScopeProject,
	}, "view-a")
	require.NoError(t, err)

	spy.getByIDCalls = 0
	_, err = repo.GetByID(ctx, saved.ID.String())
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, saved.ID.String())
	require.NoError(t, err)
	require.Equal(t, 1, spy.getByIDCalls)
}

func TestDefaultViewRepository_UpsertInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	spy := &spyRecordRepository{Repository: NewRecordRepository(db)}
	repo, err := NewRepository(RepositoryConfig{Repository: spy}, WithCache(true))
	require.NoError(t, err)

	key := types.DefaultViewKey{
		ProjectID: uuid.New(),
		ViewName:  "traces",
		Scope:     types.DefaultViewScopeProject,
	}
	_, err = repo.UpsertDefaultView(ctx, key, "view-a")
	require.NoError(t, err)

	filter := types.DefaultViewFilter{ProjectID: key.ProjectID, ViewName: key.ViewName}
	_, err = repo.ListDefaultViews(ctx, filter)
	require.NoError(t, err)

	_, err = repo.UpsertDefaultView(ctx, key, "view-b")
	require.NoError(t, err)

	spy.listCalls = 0
	rows, err := repo.ListDefaultViews(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 1, spy.listCalls)
	require.Len(t, rows, 1)
	require.Equal(t, "view-b", rows[0].ViewID)
}

func TestDefaultViewRepository_CleanupInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	spy := &spyRecordRepository{Repository: NewRecordRepository(db)}
	repo, err := NewRepository(RepositoryConfig{Repository: spy}, WithCache(true))
	require.NoError(t, err)

	key := types.DefaultViewKey{
		ProjectID: uuid.New(),
		ViewName:  "traces",
		Scope:     types.DefaultViewScopeProject,
	}
	_, err = repo.UpsertDefaultView(ctx, key, "view-a")
	require.NoError(t, err)

	filter := types.DefaultViewFilter{ProjectID: key.ProjectID, ViewName: key.ViewName}
	_, err = repo.ListDefaultViews(ctx, filter)
	require.NoError(t, err)

	removed, err := repo.DeleteDefaultViewsByView(ctx, "view-a")
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	rows, err := repo.ListDefaultViews(ctx, filter)
	require.NoError(t, err)
	require.Empty(t, rows)
}

type spyRecordRepository struct {
	repository.Repository[*Record]
	listCalls    int
	getByIDCalls int
}

func (s *spyRecordRepository) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Record, error) {
	s.getByIDCalls++
	return s.Repository.GetByID(ctx, id, criteria...)
}

func (s *spyRecordRepository) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Record, int, error) {
	s.listCalls++
	return s.Repository.List(ctx, criteria...)
}
