package service

import (
	"context"
	"log/slog"
	"time"

	"Community_Feed/internal/pkg"
)

const (
	EventUserRegistered   = "user.registered"
	EventCommunityCreated = "community.created"
	EventCommunityUpdated = "community.updated"
	EventCommunityDeleted = "community.deleted"
	EventCommunityJoined  = "community.joined"
	EventCommunityLeft    = "community.left"
	EventPostCreated      = "post.created"
	EventPostUpdated      = "post.updated"
	EventPostDeleted      = "post.deleted"
	EventPostLiked        = "post.liked"
	EventPostUnliked      = "post.unliked"
)

// Event 业务变更事件
type Event struct {
	Type        string    `json:"type"`
	ActorID     uint64    `json:"actor_id"`
	CommunityID uint64    `json:"community_id,omitempty"`
	PostID      uint64    `json:"post_id,omitempty"`
	At          time.Time `json:"at"`
}

// Key 帖子事件按帖子分区，其余按社区，再退化到用户
func (e Event) Key() string {
	switch {
	case e.PostID != 0:
		return "post:" + pkg.MakeKeyFromID(e.PostID)
	case e.CommunityID != 0:
		return "community:" + pkg.MakeKeyFromID(e.CommunityID)
	default:
		return "user:" + pkg.MakeKeyFromID(e.ActorID)
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// KafkaPublisher 同步写入 kafka
type KafkaPublisher struct {
	producer *pkg.KafkaProducer
}

func NewKafkaPublisher(producer *pkg.KafkaProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	return p.producer.SendJSON(ctx, ev.Key(), ev)
}

// LogPublisher 未配置 kafka 时的默认实现：只打日志
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
	p.log.DebugContext(ctx, "event",
		"type", ev.Type,
		"actor_id", ev.ActorID,
		"community_id", ev.CommunityID,
		"post_id", ev.PostID,
	)
	return nil
}
