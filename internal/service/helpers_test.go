package service_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Community_Feed/internal/model"
	"Community_Feed/internal/pkg"
	"Community_Feed/internal/service"
	"Community_Feed/internal/testutil"
)

type testEnv struct {
	db          *gorm.DB
	clock       *pkg.StubClock
	events      *testutil.RecordingPublisher
	communities *service.CommunityService
	posts       *service.PostService
	likes       *service.PostLikeService
}

func newTestEnv(t *testing.T) *testEnv {
	clock := pkg.NewStubClock()
	db := testutil.NewDB(t, clock)
	events := &testutil.RecordingPublisher{}
	deps := service.Deps{DB: db, Events: events, Clock: clock}

	return &testEnv{
		db:          db,
		clock:       clock,
		events:      events,
		communities: service.NewCommunityService(deps),
		posts:       service.NewPostService(deps),
		likes:       service.NewPostLikeService(deps),
	}
}

func (e *testEnv) user(t *testing.T) *model.User {
	return testutil.CreateUser(t, e.db)
}

func (e *testEnv) community(t *testing.T, creator *model.User) *model.Community {
	c, err := e.communities.CreateCommunity(testutil.Context(t), creator.ID, gofakeit.Company()+" "+gofakeit.UUID()[:8], gofakeit.Sentence(8))
	require.NoError(t, err)
	return c
}

func (e *testEnv) join(t *testing.T, u *model.User, c *model.Community) {
	_, err := e.communities.JoinCommunity(testutil.Context(t), u.ID, c.ID)
	require.NoError(t, err)
}

func (e *testEnv) post(t *testing.T, author *model.User, c *model.Community) *service.PostView {
	e.clock.Advance(time.Second)
	p, err := e.posts.CreatePost(testutil.Context(t), author.ID, c.ID, gofakeit.Sentence(12))
	require.NoError(t, err)
	return p
}

func requireKind(t *testing.T, want pkg.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, pkg.KindOf(err), "unexpected error: %v", err)
}
