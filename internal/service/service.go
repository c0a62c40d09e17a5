package service

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"Community_Feed/internal/pkg"
)

// PageSize 所有列表接口固定每页 20 条
const PageSize = 20

// Deps 各 service 共用的依赖
type Deps struct {
	DB     *gorm.DB
	Events Publisher
	Clock  pkg.Clock
	Log    *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = pkg.NewRealClock()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Events == nil {
		d.Events = NewLogPublisher(d.Log)
	}
	return d
}

// Page 一页结果；Number 从 1 开始
type Page[T any] struct {
	Items  []T
	Count  int64
	Number int
}

// HasNext 是否还有下一页
func (p *Page[T]) HasNext() bool {
	return int64(p.Number*PageSize) < p.Count
}

// HasPrevious 是否有上一页
func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func emptyPage[T any]() *Page[T] {
	return &Page[T]{Items: make([]T, 0), Count: 0, Number: 1}
}

// pageOffset 第一页总是合法的，其余页超出范围时返回 NotFound
func pageOffset(page int, count int64) (int, error) {
	if page < 1 {
		return 0, pkg.NotFound("invalid page")
	}
	offset := (page - 1) * PageSize
	if page > 1 && int64(offset) >= count {
		return 0, pkg.NotFound("invalid page")
	}
	return offset, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// publish 事件投递失败只记日志，不影响已提交的业务结果
func publish(ctx context.Context, d Deps, ev Event) {
	if ev.At.IsZero() {
		ev.At = d.Clock.NowUtc()
	}
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.Log.WarnContext(ctx, "publishing event failed", "type", ev.Type, "err", err)
	}
}
