package service

import (
	"context"
	"strings"

	"Community_Feed/internal/model"
	"Community_Feed/internal/pkg"
	"Community_Feed/internal/repository/rdb"
)

type PostService struct {
	deps          Deps
	repo          *rdb.PostRepository
	communityRepo *rdb.CommunityRepository
	memberRepo    *rdb.CommunityMemberRepository
	likeRepo      *rdb.PostLikeRepository
}

// PostView 帖子 + 调用者是否点赞
type PostView struct {
	rdb.PostRow
	IsLiked bool
}

func NewPostService(deps Deps) *PostService {
	deps = deps.withDefaults()
	return &PostService{
		deps:          deps,
		repo:          &rdb.PostRepository{DB: deps.DB},
		communityRepo: &rdb.CommunityRepository{DB: deps.DB},
		memberRepo:    &rdb.CommunityMemberRepository{DB: deps.DB},
		likeRepo:      &rdb.PostLikeRepository{DB: deps.DB},
	}
}

// CreatePost 只有社区成员可以发帖
func (s *PostService) CreatePost(ctx context.Context, callerID, communityID uint64, content string) (*PostView, error) {
	fields := map[string][]string{}
	if strings.TrimSpace(content) == "" {
		fields["content"] = []string{"This field may not be blank."}
	}
	if communityID == 0 {
		fields["community"] = []string{"This field is required."}
	} else if _, err := s.communityRepo.FindByID(ctx, communityID); err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		fields["community"] = []string{"Invalid community - object does not exist."}
	}
	if len(fields) > 0 {
		return nil, pkg.ValidationFields(fields)
	}

	// 判断是否是 community 成员
	ok, err := s.memberRepo.IsMember(ctx, communityID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.Forbidden("You must be a member of the community to post.")
	}

	post := &model.Post{
		CommunityID: communityID,
		AuthorID:    callerID,
		Content:     content,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	publish(ctx, s.deps, Event{Type: EventPostCreated, ActorID: callerID, CommunityID: communityID, PostID: post.ID})
	return s.GetPost(ctx, callerID, post.ID)
}

// ListPosts communityID 为 0 时列出全部帖子，新帖在前
func (s *PostService) ListPosts(ctx context.Context, callerID, communityID uint64, page int) (*Page[PostView], error) {
	count, err := s.repo.Count(ctx, communityID)
	if err != nil {
		return nil, err
	}
	offset, err := pageOffset(page, count)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, communityID, offset, PageSize)
	if err != nil {
		return nil, err
	}
	items, err := s.annotate(ctx, callerID, rows)
	if err != nil {
		return nil, err
	}
	return &Page[PostView]{Items: items, Count: count, Number: page}, nil
}

// Feed 社区信息流：非成员拿到空结果而不是报错
func (s *PostService) Feed(ctx context.Context, callerID, communityID uint64, page int) (*Page[PostView], error) {
	isMember, err := s.memberRepo.IsMember(ctx, communityID, callerID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		if _, err := pageOffset(page, 0); err != nil {
			return nil, err
		}
		return emptyPage[PostView](), nil
	}
	return s.ListPosts(ctx, callerID, communityID, page)
}

func (s *PostService) annotate(ctx context.Context, callerID uint64, rows []rdb.PostRow) ([]PostView, error) {
	ids := make([]uint64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	liked, err := s.likeRepo.LikedAmong(ctx, callerID, ids)
	if err != nil {
		return nil, err
	}
	items := make([]PostView, len(rows))
	for i, row := range rows {
		items[i] = PostView{PostRow: row, IsLiked: liked[row.ID]}
	}
	return items, nil
}

func (s *PostService) GetPost(ctx context.Context, callerID, postID uint64) (*PostView, error) {
	row, err := s.repo.FindRow(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("post not found")
		}
		return nil, err
	}
	liked, err := s.likeRepo.IsLiked(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}
	return &PostView{PostRow: *row, IsLiked: liked}, nil
}

func (s *PostService) find(ctx context.Context, postID uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("post not found")
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost 仅作者可修改；content 为 nil 时不改内容
func (s *PostService) UpdatePost(ctx context.Context, callerID, postID uint64, content *string) (*PostView, error) {
	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != callerID {
		return nil, pkg.Forbidden("Only the author can update this post")
	}
	if content == nil {
		return s.GetPost(ctx, callerID, postID)
	}
	if strings.TrimSpace(*content) == "" {
		return nil, pkg.Validation("content", "This field may not be blank.")
	}
	if err := s.repo.UpdateContent(ctx, post, *content); err != nil {
		return nil, err
	}

	publish(ctx, s.deps, Event{Type: EventPostUpdated, ActorID: callerID, CommunityID: post.CommunityID, PostID: postID})
	return s.GetPost(ctx, callerID, postID)
}

// DeletePost 仅作者可删除，点赞一并删除
func (s *PostService) DeletePost(ctx context.Context, callerID, postID uint64) error {
	post, err := s.find(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return pkg.Forbidden("Only the author can delete this post")
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	publish(ctx, s.deps, Event{Type: EventPostDeleted, ActorID: callerID, CommunityID: post.CommunityID, PostID: postID})
	return nil
}
