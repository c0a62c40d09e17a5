package service

import (
	"context"

	"Community_Feed/internal/pkg"
	"Community_Feed/internal/repository/rdb"
)

type PostLikeService struct {
	deps       Deps
	repo       *rdb.PostLikeRepository
	postRepo   *rdb.PostRepository
	memberRepo *rdb.CommunityMemberRepository
}

// LikeResult 切换之后的状态
type LikeResult struct {
	Liked     bool
	LikeCount int64
}

func NewPostLikeService(deps Deps) *PostLikeService {
	deps = deps.withDefaults()
	return &PostLikeService{
		deps:       deps,
		repo:       &rdb.PostLikeRepository{DB: deps.DB},
		postRepo:   &rdb.PostRepository{DB: deps.DB},
		memberRepo: &rdb.CommunityMemberRepository{DB: deps.DB},
	}
}

// Toggle 未点赞则点赞，已点赞则取消；只有帖子所在社区的成员可以操作
func (s *PostLikeService) Toggle(ctx context.Context, callerID, postID uint64) (*LikeResult, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("post not found")
		}
		return nil, err
	}

	isMember, err := s.memberRepo.IsMember(ctx, post.CommunityID, callerID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, pkg.Forbidden("You must be a member of the community to like posts")
	}

	liked, count, err := s.repo.Toggle(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}

	evType := EventPostUnliked
	if liked {
		evType = EventPostLiked
	}
	publish(ctx, s.deps, Event{Type: evType, ActorID: callerID, CommunityID: post.CommunityID, PostID: postID})
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// ListLikes 最新的在前，不做权限校验
func (s *PostLikeService) ListLikes(ctx context.Context, postID uint64) ([]rdb.LikeRow, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("post not found")
		}
		return nil, err
	}
	return s.repo.ListByPost(ctx, postID)
}
