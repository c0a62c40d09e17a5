// Package testutil 测试公用的内存 sqlite 库和 redis、事件的替身
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Community_Feed/internal/model"
	"Community_Feed/internal/pkg"
	"Community_Feed/internal/repository/rdb"
	"Community_Feed/internal/service"
)

func Context(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// NewDB 每个测试一个独立的内存库
func NewDB(t testing.TB, clock pkg.Clock) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := rdb.Open("sqlite", dsn, clock)
	require.NoError(t, err)

	// 单连接：内存库在最后一个连接关闭时销毁，也避免共享缓存下的表锁
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, rdb.AutoMigrate(db))
	t.Cleanup(func() {
		_ = rdb.Close(db)
	})
	return db
}

// CreateUser 直接写库的用户，密码不可用于登录
func CreateUser(t testing.TB, db *gorm.DB) *model.User {
	t.Helper()

	user := &model.User{
		Username:  gofakeit.Username() + "_" + uuid.NewString()[:8],
		Password:  "unusable",
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}
	require.NoError(t, (&rdb.UserRepository{DB: db}).Create(context.Background(), user))
	return user
}

// MemoryBlacklist 替代 redis 的 refresh token 黑名单
type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: map[string]time.Duration{}}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ttl <= 0 {
		return false, nil
	}
	if _, ok := b.revoked[jti]; ok {
		return false, nil
	}
	b.revoked[jti] = ttl
	return true, nil
}

func (b *MemoryBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.revoked)
}

// RecordingPublisher 记录所有发布的事件
type RecordingPublisher struct {
	mu     sync.Mutex
	events []service.Event
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, ev service.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func (p *RecordingPublisher) Events() []service.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.Event(nil), p.events...)
}

// MailRecorder 收集欢迎邮件的收件人
type MailRecorder struct {
	mu   sync.Mutex
	Sent []string
	Err  error
}

func (r *MailRecorder) SendWelcome(_ context.Context, to, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, to)
	return nil
}
