// Package clock 抽象延迟回调：生产环境使用真实定时器，测试中手动推进时间。
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer 可取消的待执行回调
type Timer interface {
	// Stop 阻止回调执行。回调已执行或已停止时返回 false。
	Stop() bool
}

// Scheduler 延迟执行回调
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real 基于 time.AfterFunc 调度
type Real struct{}

// AfterFunc 实现 Scheduler
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Group 记录一个会话的全部待执行定时器，以便统一取消。
type Group struct {
	mu     sync.Mutex
	timers []Timer
	closed bool
}

// Add 登记 t，group 已停止时立即停止 t。
func (g *Group) Add(t Timer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		t.Stop()
		return
	}
	g.timers = append(g.timers, t)
}

// StopAll 取消所有已登记的定时器，之后不再接受新的定时器。
func (g *Group) StopAll() {
	g.mu.Lock()
	timers := g.timers
	g.timers = nil
	g.closed = true
	g.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
}

// Fake 手动推进的 Scheduler，回调在 Advance 中按到期顺序同步执行。
type Fake struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

// NewFake 创建从零点开始的 Fake。
func NewFake() *Fake {
	return &Fake{}
}

type fakeTimer struct {
	fake     *Fake
	deadline time.Duration
	seq      int
	f        func()
	done     bool
}

// AfterFunc 实现 Scheduler
func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{fake: c, deadline: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance 把时钟推进 d 并执行所有到期回调，包括窗口内由其他回调新注册的回调。
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.done = true
		c.now = next.deadline
		c.mu.Unlock()

		next.f()
	}
}

// Pending 返回既未触发也未停止的定时器数量。
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (c *Fake) nextDueLocked(target time.Duration) *fakeTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	c.timers = live

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].deadline == c.timers[j].deadline {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].deadline < c.timers[j].deadline
	})
	if len(c.timers) == 0 || c.timers[0].deadline > target {
		return nil
	}
	return c.timers[0]
}
