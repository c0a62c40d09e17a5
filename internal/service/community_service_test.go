package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"Community_Feed/internal/model"
	"Community_Feed/internal/pkg"
	"Community_Feed/internal/service"
	"Community_Feed/internal/testutil"
)

func TestCreateCommunity(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	creator := env.user(t)

	c, err := env.communities.CreateCommunity(ctx, creator.ID, "  Runners  ", "People who run")
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	require.Equal(t, "Runners", c.Name)
	require.Equal(t, creator.ID, c.CreatorID)

	detail, err := env.communities.GetCommunity(ctx, creator.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), detail.MemberCount)
	require.Equal(t, int64(0), detail.PostCount)
	require.Equal(t, creator.Username, detail.CreatorName)
	require.True(t, detail.IsMember)
	require.Len(t, detail.Members, 1)
	require.Equal(t, creator.ID, detail.Members[0].UserID)
	require.Equal(t, model.MemberRoleCreator, detail.Members[0].Role)

	require.Equal(t, []string{service.EventCommunityCreated}, env.events.Types())
}

func TestCreateCommunityDuplicateName(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	creator := env.user(t)

	_, err := env.communities.CreateCommunity(ctx, creator.ID, "Runners", "first")
	require.NoError(t, err)

	_, err = env.communities.CreateCommunity(ctx, env.user(t).ID, "Runners", "second")
	requireKind(t, pkg.KindConflict, err)
}

func TestCreateCommunityValidation(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	creator := env.user(t)

	_, err := env.communities.CreateCommunity(ctx, creator.ID, "   ", "")
	requireKind(t, pkg.KindValidation, err)

	var e *pkg.Error
	require.ErrorAs(t, err, &e)
	require.Contains(t, e.Fields, "name")
	require.Contains(t, e.Fields, "description")
}

func TestJoinCommunityTwice(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	c := env.community(t, env.user(t))
	member := env.user(t)

	env.join(t, member, c)
	_, err := env.communities.JoinCommunity(ctx, member.ID, c.ID)
	requireKind(t, pkg.KindConflict, err)

	view, err := env.communities.GetCommunity(ctx, member.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), view.MemberCount)
	require.True(t, view.IsMember)
}

func TestJoinMissingCommunity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.communities.JoinCommunity(testutil.Context(t), env.user(t).ID, 9999)
	requireKind(t, pkg.KindNotFound, err)
}

func TestCreatorCannotLeave(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	creator := env.user(t)
	c := env.community(t, creator)
	env.join(t, env.user(t), c)
	env.join(t, env.user(t), c)

	_, err := env.communities.LeaveCommunity(ctx, creator.ID, c.ID)
	requireKind(t, pkg.KindInvalidOperation, err)

	members, err := env.communities.ListMembers(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
}

func TestLeaveCommunity(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	c := env.community(t, env.user(t))
	member := env.user(t)

	_, err := env.communities.LeaveCommunity(ctx, member.ID, c.ID)
	requireKind(t, pkg.KindNotFound, err)

	env.join(t, member, c)
	left, err := env.communities.LeaveCommunity(ctx, member.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Name, left.Name)

	view, err := env.communities.GetCommunity(ctx, member.ID, c.ID)
	require.NoError(t, err)
	require.False(t, view.IsMember)
	require.Equal(t, int64(1), view.MemberCount)

	// 退出后可以重新加入
	env.join(t, member, c)
}

func TestListMembersNewestFirst(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	creator := env.user(t)
	c := env.community(t, creator)

	first, second := env.user(t), env.user(t)
	env.clock.Advance(time.Second)
	env.join(t, first, c)
	env.clock.Advance(time.Second)
	env.join(t, second, c)

	members, err := env.communities.ListMembers(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	require.Equal(t, second.ID, members[0].UserID)
	require.Equal(t, first.ID, members[1].UserID)
	require.Equal(t, creator.ID, members[2].UserID)
	require.Equal(t, second.Username, members[0].Username)
}

func TestListCommunities(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	alice, bob := env.user(t), env.user(t)

	older := env.community(t, alice)
	env.clock.Advance(time.Second)
	newer := env.community(t, bob)

	page, err := env.communities.ListCommunities(ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Count)
	require.Len(t, page.Items, 2)
	require.Equal(t, newer.ID, page.Items[0].ID)
	require.False(t, page.Items[0].IsMember)
	require.Equal(t, older.ID, page.Items[1].ID)
	require.True(t, page.Items[1].IsMember)
	require.False(t, page.HasNext())

	anon, err := env.communities.ListCommunities(ctx, 0, 1)
	require.NoError(t, err)
	for _, item := range anon.Items {
		require.False(t, item.IsMember)
	}

	_, err = env.communities.ListCommunities(ctx, alice.ID, 2)
	requireKind(t, pkg.KindNotFound, err)
}

func TestUpdateCommunity(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	creator := env.user(t)
	c := env.community(t, creator)
	other := env.community(t, env.user(t))

	name := "Trail Runners"
	_, err := env.communities.UpdateCommunity(ctx, env.user(t).ID, c.ID, service.CommunityUpdate{Name: &name})
	requireKind(t, pkg.KindPermission, err)

	updated, err := env.communities.UpdateCommunity(ctx, creator.ID, c.ID, service.CommunityUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, c.Description, updated.Description)

	taken := other.Name
	_, err = env.communities.UpdateCommunity(ctx, creator.ID, c.ID, service.CommunityUpdate{Name: &taken})
	requireKind(t, pkg.KindConflict, err)

	blank := ""
	_, err = env.communities.UpdateCommunity(ctx, creator.ID, c.ID, service.CommunityUpdate{Description: &blank})
	requireKind(t, pkg.KindValidation, err)
}

func TestDeleteCommunityCascades(t *testing.T) {
	ctx := testutil.Context(t)
	env := newTestEnv(t)
	creator, member := env.user(t), env.user(t)
	c := env.community(t, creator)
	env.join(t, member, c)
	p := env.post(t, member, c)
	_, err := env.likes.Toggle(ctx, creator.ID, p.ID)
	require.NoError(t, err)

	err = env.communities.DeleteCommunity(ctx, member.ID, c.ID)
	requireKind(t, pkg.KindPermission, err)

	require.NoError(t, env.communities.DeleteCommunity(ctx, creator.ID, c.ID))

	_, err = env.communities.GetCommunity(ctx, creator.ID, c.ID)
	requireKind(t, pkg.KindNotFound, err)
	_, err = env.posts.GetPost(ctx, creator.ID, p.ID)
	requireKind(t, pkg.KindNotFound, err)

	for _, table := range []any{&model.CommunityMember{}, &model.Post{}, &model.PostLike{}} {
		var n int64
		require.NoError(t, env.db.Model(table).Count(&n).Error)
		require.Zero(t, n)
	}
}
