package service

import (
	"context"
	"strings"

	"Community_Feed/internal/model"
	"Community_Feed/internal/pkg"
	"Community_Feed/internal/repository/rdb"
)

type CommunityService struct {
	deps       Deps
	repo       *rdb.CommunityRepository
	memberRepo *rdb.CommunityMemberRepository
}

// CommunityView 社区 + 调用者是否成员
type CommunityView struct {
	rdb.CommunityRow
	IsMember bool
}

// CommunityDetail 详情额外带成员列表
type CommunityDetail struct {
	CommunityView
	Members []rdb.MemberRow
}

// CommunityUpdate 部分更新，nil 表示不修改
type CommunityUpdate struct {
	Name        *string
	Description *string
}

func NewCommunityService(deps Deps) *CommunityService {
	deps = deps.withDefaults()
	return &CommunityService{
		deps:       deps,
		repo:       &rdb.CommunityRepository{DB: deps.DB},
		memberRepo: &rdb.CommunityMemberRepository{DB: deps.DB},
	}
}

const (
	maxCommunityNameLen = 200
	msgCommunityExists  = "community with this name already exists"
)

// checkCommunityName 返回空串表示合法
func checkCommunityName(name string) string {
	if name == "" {
		return "This field may not be blank."
	}
	if len([]rune(name)) > maxCommunityNameLen {
		return "Ensure this field has no more than 200 characters."
	}
	return ""
}

// CreateCommunity 创建社区，创建者在同一事务中成为第一个成员
func (s *CommunityService) CreateCommunity(ctx context.Context, callerID uint64, name, desc string) (*model.Community, error) {
	name = strings.TrimSpace(name)
	fields := map[string][]string{}
	if msg := checkCommunityName(name); msg != "" {
		fields["name"] = []string{msg}
	}
	if strings.TrimSpace(desc) == "" {
		fields["description"] = []string{"This field may not be blank."}
	}
	if len(fields) > 0 {
		return nil, pkg.ValidationFields(fields)
	}

	exists, err := s.repo.ExistsByName(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkg.Conflict(msgCommunityExists)
	}

	community := &model.Community{
		Name:        name,
		Description: desc,
		CreatorID:   callerID,
	}
	if err := s.repo.Create(ctx, community); err != nil {
		// 并发同名创建由唯一索引兜底
		if isDuplicate(err) {
			return nil, pkg.Conflict(msgCommunityExists)
		}
		return nil, err
	}

	publish(ctx, s.deps, Event{Type: EventCommunityCreated, ActorID: callerID, CommunityID: community.ID})
	return community, nil
}

// ListCommunities callerID 为 0 表示匿名访问
func (s *CommunityService) ListCommunities(ctx context.Context, callerID uint64, page int) (*Page[CommunityView], error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	offset, err := pageOffset(page, count)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, offset, PageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	memberOf, err := s.memberRepo.MemberOf(ctx, callerID, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CommunityView, len(rows))
	for i, row := range rows {
		items[i] = CommunityView{CommunityRow: row, IsMember: memberOf[row.ID]}
	}
	return &Page[CommunityView]{Items: items, Count: count, Number: page}, nil
}

func (s *CommunityService) view(ctx context.Context, callerID, communityID uint64) (*CommunityView, error) {
	row, err := s.repo.FindRow(ctx, communityID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("community not found")
		}
		return nil, err
	}
	isMember, err := s.memberRepo.IsMember(ctx, communityID, callerID)
	if err != nil {
		return nil, err
	}
	return &CommunityView{CommunityRow: *row, IsMember: isMember}, nil
}

// GetCommunity 详情，含完整成员列表
func (s *CommunityService) GetCommunity(ctx context.Context, callerID, communityID uint64) (*CommunityDetail, error) {
	v, err := s.view(ctx, callerID, communityID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListMembers(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return &CommunityDetail{CommunityView: *v, Members: members}, nil
}

func (s *CommunityService) find(ctx context.Context, communityID uint64) (*model.Community, error) {
	community, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("community not found")
		}
		return nil, err
	}
	return community, nil
}

// UpdateCommunity 仅创建者可修改
func (s *CommunityService) UpdateCommunity(ctx context.Context, callerID, communityID uint64, in CommunityUpdate) (*CommunityView, error) {
	community, err := s.find(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community.CreatorID != callerID {
		return nil, pkg.Forbidden("Only the creator can update this community")
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if msg := checkCommunityName(name); msg != "" {
			return nil, pkg.Validation("name", msg)
		}
		if name != community.Name {
			exists, err := s.repo.ExistsByName(ctx, name, community.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, pkg.Conflict(msgCommunityExists)
			}
			fields["name"] = name
		}
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, pkg.Validation("description", "This field may not be blank.")
		}
		fields["description"] = *in.Description
	}

	if err := s.repo.Update(ctx, community, fields); err != nil {
		if isDuplicate(err) {
			return nil, pkg.Conflict(msgCommunityExists)
		}
		return nil, err
	}
	if len(fields) > 0 {
		publish(ctx, s.deps, Event{Type: EventCommunityUpdated, ActorID: callerID, CommunityID: communityID})
	}
	return s.view(ctx, callerID, communityID)
}

// DeleteCommunity 仅创建者可删除，级联删除成员、帖子和点赞
func (s *CommunityService) DeleteCommunity(ctx context.Context, callerID, communityID uint64) error {
	community, err := s.find(ctx, communityID)
	if err != nil {
		return err
	}
	if community.CreatorID != callerID {
		return pkg.Forbidden("Only the creator can delete this community")
	}
	if err := s.repo.Delete(ctx, communityID); err != nil {
		return err
	}
	publish(ctx, s.deps, Event{Type: EventCommunityDeleted, ActorID: callerID, CommunityID: communityID})
	return nil
}

func (s *CommunityService) JoinCommunity(ctx context.Context, callerID, communityID uint64) (*model.Community, error) {
	community, err := s.find(ctx, communityID)
	if err != nil {
		return nil, err
	}
	isMember, err := s.memberRepo.IsMember(ctx, communityID, callerID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, pkg.Conflict("You are already a member of this community")
	}

	if err := s.memberRepo.Join(ctx, &model.CommunityMember{
		CommunityID: communityID,
		UserID:      callerID,
		Role:        model.MemberRoleMember,
	}); err != nil {
		if isDuplicate(err) {
			return nil, pkg.Conflict("You are already a member of this community")
		}
		return nil, err
	}

	publish(ctx, s.deps, Event{Type: EventCommunityJoined, ActorID: callerID, CommunityID: communityID})
	return community, nil
}

// LeaveCommunity 先判断创建者再判断成员关系：创建者的成员关系不可删除，
// 所以创建者一定是成员，两种顺序结果一致
func (s *CommunityService) LeaveCommunity(ctx context.Context, callerID, communityID uint64) (*model.Community, error) {
	community, err := s.find(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community.CreatorID == callerID {
		return nil, pkg.InvalidOperation("Community creator cannot leave their own community")
	}

	affected, err := s.memberRepo.Leave(ctx, communityID, callerID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, pkg.NotFound("You are not a member of this community")
	}

	publish(ctx, s.deps, Event{Type: EventCommunityLeft, ActorID: callerID, CommunityID: communityID})
	return community, nil
}

// ListMembers 最近加入的在前
func (s *CommunityService) ListMembers(ctx context.Context, communityID uint64) ([]rdb.MemberRow, error) {
	if _, err := s.find(ctx, communityID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListMembers(ctx, communityID)
}
