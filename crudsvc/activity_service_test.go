package crudsvc

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-tableviews/crudguard"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestActivityServiceIndexBuildsFilter(t *testing.T) {
	actor := types.ActorRef{ID: uuid.New(), Type: types.ActorRoleMember}
	projectID := uuid.New()
	otherActor := uuid.New()
	feed := &stubFeedQuery{page: types.ActivityPage{
		Records: []types.ActivityRecord{{ID: uuid.New(), Verb: "default_view.set", ProjectID: projectID}},
		Total:   1,
	}}
	svc := NewActivityService(ActivityServiceConfig{
		Guard: &stubGuardAdapter{result: crudguard.GuardResult{
			Actor: actor,
			Scope: types.ScopeFilter{ProjectID: projectID},
		}},
		FeedQuery: feed,
	})

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := newTestCrudContext(context.Background()).
		withQuery("actor_id", otherActor.String()).
		withQuery("verb", "default_view.set, default_view.clear").
		withQuery("object_id", "traces").
		withQuery("since", since.Format(time.RFC3339)).
		withQuery("limit", "10")

	entries, total, err := svc.Index(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, entries, 1)
	require.Equal(t, "default_view.set", entries[0].Verb)

	require.Equal(t, actor, feed.last.Actor)
	require.Equal(t, projectID, feed.last.ProjectID)
	require.Equal(t, otherActor, feed.last.ActorID)
	require.Equal(t, []string{"default_view.set", "default_view.clear"}, feed.last.Verbs)
	require.Equal(t, "traces", feed.last.ObjectID)
	require.NotNil(t, feed.last.Since)
	require.True(t, since.Equal(*feed.last.Since))
	require.Equal(t, 10, feed.last.Pagination.Limit)
}

func TestActivityServiceIsReadOnly(t *testing.T) {
	svc := NewActivityService(ActivityServiceConfig{Guard: &stubGuardAdapter{}})
	ctx := newTestCrudContext(context.Background())

	_, err := svc.Create(ctx, nil)
	require.Error(t, err)
	require.Error(t, svc.Delete(ctx, nil))
	_, err = svc.Show(ctx, uuid.NewString(), nil)
	require.Error(t, err)
}

func TestActivityServiceMissingFeed(t *testing.T) {
	svc := NewActivityService(ActivityServiceConfig{Guard: &stubGuardAdapter{}})
	_, _, err := svc.Index(newTestCrudContext(context.Background()), nil)
	require.Error(t, err)
}

type stubFeedQuery struct {
	page types.ActivityPage
	last types.ActivityFilter
}

func (s *stubFeedQuery) Query(_ context.Context, filter types.ActivityFilter) (types.ActivityPage, error) {
	s.last = filter
	return s.page, nil
}
