package pkg

import (
	"sync"
	"time"
)

// Clock 时间源，gorm 的 NowFunc 和 token 签发都从这里取时间
type Clock interface {
	NowUtc() time.Time
}

type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) NowUtc() time.Time {
	return time.Now().UTC()
}

// StubClock 测试用的固定时钟
type StubClock struct {
	now  time.Time
	lock sync.Mutex
}

func NewStubClock() *StubClock {
	clock := &StubClock{}
	clock.SetNow(time.Now())
	return clock
}

func (c *StubClock) NowUtc() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *StubClock) SetNow(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	// 截断到毫秒，和 mysql datetime(3) 精度一致
	c.now = now.UTC().Truncate(time.Millisecond)
}

// Advance 时钟前进 d 并返回新时间
func (c *StubClock) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
