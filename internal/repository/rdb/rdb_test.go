package rdb_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Community_Feed/internal/model"
	"Community_Feed/internal/pkg"
	"Community_Feed/internal/repository/rdb"
	"Community_Feed/internal/testutil"
)

func newCommunity(t *testing.T, db *gorm.DB, creator *model.User) *model.Community {
	c := &model.Community{
		Name:        gofakeit.Company() + " " + gofakeit.UUID()[:8],
		Description: gofakeit.Sentence(6),
		CreatorID:   creator.ID,
	}
	require.NoError(t, (&rdb.CommunityRepository{DB: db}).Create(testutil.Context(t), c))
	return c
}

func TestCommunityCreateAddsCreator(t *testing.T) {
	ctx := testutil.Context(t)
	db := testutil.NewDB(t, pkg.NewStubClock())
	creator := testutil.CreateUser(t, db)
	c := newCommunity(t, db, creator)

	members := &rdb.CommunityMemberRepository{DB: db}
	ok, err := members.IsMember(ctx, c.ID, creator.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// 创建者的成员关系不会被 Leave 删除
	affected, err := members.Leave(ctx, c.ID, creator.ID)
	require.NoError(t, err)
	require.Zero(t, affected)

	row, err := (&rdb.CommunityRepository{DB: db}).FindRow(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), row.MemberCount)
	require.Equal(t, creator.Username, row.CreatorName)
}

func TestCommunityNameUnique(t *testing.T) {
	ctx := testutil.Context(t)
	db := testutil.NewDB(t, pkg.NewStubClock())
	c := newCommunity(t, db, testutil.CreateUser(t, db))

	err := (&rdb.CommunityRepository{DB: db}).Create(ctx, &model.Community{
		Name:        c.Name,
		Description: "dup",
		CreatorID:   testutil.CreateUser(t, db).ID,
	})
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	// 事务回滚，第二个创建者没有成为成员
	count, err := (&rdb.CommunityRepository{DB: db}).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	var members int64
	require.NoError(t, db.Model(&model.CommunityMember{}).Count(&members).Error)
	require.Equal(t, int64(1), members)
}

func TestJoinTwiceIsDuplicate(t *testing.T) {
	ctx := testutil.Context(t)
	db := testutil.NewDB(t, pkg.NewStubClock())
	c := newCommunity(t, db, testutil.CreateUser(t, db))
	u := testutil.CreateUser(t, db)

	members := &rdb.CommunityMemberRepository{DB: db}
	require.NoError(t, members.Join(ctx, &model.CommunityMember{CommunityID: c.ID, UserID: u.ID}))
	err := members.Join(ctx, &model.CommunityMember{CommunityID: c.ID, UserID: u.ID})
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestToggleLike(t *testing.T) {
	ctx := testutil.Context(t)
	db := testutil.NewDB(t, pkg.NewStubClock())
	u := testutil.CreateUser(t, db)
	c := newCommunity(t, db, u)
	post := &model.Post{CommunityID: c.ID, AuthorID: u.ID, Content: gofakeit.Sentence(5)}
	require.NoError(t, (&rdb.PostRepository{DB: db}).Create(ctx, post))

	likes := &rdb.PostLikeRepository{DB: db}
	liked, count, err := likes.Toggle(ctx, u.ID, post.ID)
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, int64(1), count)

	other := testutil.CreateUser(t, db)
	liked, count, err = likes.Toggle(ctx, other.ID, post.ID)
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, int64(2), count)

	liked, count, err = likes.Toggle(ctx, u.ID, post.ID)
	require.NoError(t, err)
	require.False(t, liked)
	require.Equal(t, int64(1), count)

	among, err := likes.LikedAmong(ctx, other.ID, []uint64{post.ID, 9999})
	require.NoError(t, err)
	require.Equal(t, map[uint64]bool{post.ID: true}, among)

	row, err := (&rdb.PostRepository{DB: db}).FindRow(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), row.LikeCount)
	require.Equal(t, c.Name, row.CommunityName)
}

// 删除前行已被另一个请求删掉时，Toggle 回到插入，结果仍是切换后的状态
func TestToggleLikeRetriesAfterConcurrentUnlike(t *testing.T) {
	ctx := testutil.Context(t)
	db := testutil.NewDB(t, pkg.NewStubClock())
	u := testutil.CreateUser(t, db)
	c := newCommunity(t, db, u)
	post := &model.Post{CommunityID: c.ID, AuthorID: u.ID, Content: gofakeit.Sentence(5)}
	require.NoError(t, (&rdb.PostRepository{DB: db}).Create(ctx, post))

	likes := &rdb.PostLikeRepository{DB: db}
	liked, _, err := likes.Toggle(ctx, u.ID, post.ID)
	require.NoError(t, err)
	require.True(t, liked)

	var stolen int
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:concurrent_unlike", func(tx *gorm.DB) {
		if tx.Statement.Table != "post_likes" || stolen > 0 {
			return
		}
		stolen++
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).
			Exec("DELETE FROM post_likes WHERE user_id = ? AND post_id = ?", u.ID, post.ID).Error)
	}))

	liked, count, err := likes.Toggle(ctx, u.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stolen)
	require.True(t, liked)
	require.Equal(t, int64(1), count)

	ok, err := likes.IsLiked(ctx, u.ID, post.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPostListOrder(t *testing.T) {
	ctx := testutil.Context(t)
	clock := pkg.NewStubClock()
	db := testutil.NewDB(t, clock)
	u := testutil.CreateUser(t, db)
	c := newCommunity(t, db, u)
	posts := &rdb.PostRepository{DB: db}

	var ids []uint64
	for range 3 {
		clock.Advance(time.Second)
		p := &model.Post{CommunityID: c.ID, AuthorID: u.ID, Content: gofakeit.Sentence(4)}
		require.NoError(t, posts.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	rows, err := posts.List(ctx, c.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, ids[1], rows[0].ID)
	require.Equal(t, ids[0], rows[1].ID)

	count, err := posts.Count(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	require.NoError(t, posts.Delete(ctx, ids[2]))
	_, err = posts.FindByID(ctx, ids[2])
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
