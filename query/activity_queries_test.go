package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestActivityFeedQuery_ScopesToResolvedProject(t *testing.T) {
	canonical := uuid.New()
	guard := scope.NewGuard(types.ScopeResolverFunc(func(_ context.Context, _ types.ActorRef, requested types.ScopeFilter) (types.ScopeFilter, error) {
		requested.ProjectID = canonical
		return requested, nil
	}), nil)
	repo := &fakeActivityRepo{}
	query := NewActivityFeedQuery(repo, guard)

	_, err := query.Query(context.Background(), types.ActivityFilter{
		Actor:     types.ActorRef{ID: uuid.New()},
		ProjectID: uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, canonical, repo.filter.ProjectID)
}

func TestActivityFeedQuery_MissingRepository(t *testing.T) {
	_, err := NewActivityFeedQuery(nil, nil).Query(context.Background(), types.ActivityFilter{})
	require.ErrorIs(t, err, types.ErrMissingActivityRepository)
}

type fakeActivityRepo struct {
	filter types.ActivityFilter
}

func (f *fakeActivityRepo) ListActivity(_ context.Context, filter types.ActivityFilter) (types.ActivityPage, error) {
	f.filter = filter
	return types.ActivityPage{}, nil
}
