// Package analytics 统计访客在每个漏斗中走到了哪一步。
package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/myabroadportal/portal/backend/internal/logger"
)

const (
	// DefaultQueueSize 是待写入命中事件的缓冲上限，队列满时新事件被丢弃。
	DefaultQueueSize = 1024
	// DefaultHitTimeout 限制单次写入存储的时间。
	DefaultHitTimeout = 5 * time.Second
)

// Repository 按步骤统计到达过的不同 run 数量。
type Repository interface {
	Hit(ctx context.Context, funnel, step, runID string) error
	Counts(ctx context.Context, funnel string) (map[string]int, error)
}

// StepReach 报表中的一行。
type StepReach struct {
	Step          string `json:"step"`
	Count         int    `json:"count"`
	PercentOfBase int    `json:"percentOfBase"`
	PercentOfPrev int    `json:"percentOfPrev"`
}

// Report 单个漏斗各步骤的到达情况，按漏斗顺序排列。
type Report struct {
	Funnel string      `json:"funnel"`
	Steps  []StepReach `json:"steps"`
}

type hit struct {
	funnel, step, runID string
}

// Option 自定义 Service。
type Option func(*Service)

// WithQueueSize 覆盖 DefaultQueueSize。
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithHitTimeout 覆盖 DefaultHitTimeout。
func WithHitTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.hitTimeout = d
		}
	}
}

// Service 记录到达事件并生成报表。
// 写入由后台 worker 串行完成，调用方永远不会等待存储。
type Service struct {
	repo       Repository
	logger     *zap.Logger
	queueSize  int
	hitTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan hit
	done   chan struct{}
}

// NewService 包装 repo 并启动写入 worker。
func NewService(repo Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		logger:     logger.OrNop(log).Named("analytics"),
		queueSize:  DefaultQueueSize,
		hitTimeout: DefaultHitTimeout,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan hit, s.queueSize)
	go s.run()
	return s
}

// Reach 记录 runID 到达了 step。不阻塞：队列满或服务已关闭时事件被丢弃。
func (s *Service) Reach(funnel, step, runID string) {
	if s == nil || s.repo == nil || step == "" {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- hit{funnel: funnel, step: step, runID: runID}:
	default:
		s.logger.Warn("funnel reach queue full, dropping hit",
			zap.String("funnel", funnel), zap.String("step", step))
	}
}

// Close 停止接收新事件，并等待已排队的事件写完。
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *Service) run() {
	defer close(s.done)
	for h := range s.queue {
		if s.repo == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.hitTimeout)
		if err := s.repo.Hit(ctx, h.funnel, h.step, h.runID); err != nil {
			s.logger.Warn("record funnel reach failed",
				zap.String("funnel", h.funnel), zap.String("step", h.step), zap.Error(err))
		}
		cancel()
	}
}

// Report 按顺序返回各步骤的到达情况。百分比以第一步为基准，
// 第一步无人到达时以最大的一步为基准。
func (s *Service) Report(ctx context.Context, funnel string, order []string) (Report, error) {
	counts, err := s.repo.Counts(ctx, funnel)
	if err != nil {
		return Report{}, err
	}

	var base int
	if len(order) > 0 {
		base = counts[order[0]]
	}
	if base == 0 {
		for _, step := range order {
			if counts[step] > base {
				base = counts[step]
			}
		}
	}

	report := Report{Funnel: funnel, Steps: make([]StepReach, 0, len(order))}
	var prev int
	for i, step := range order {
		c := counts[step]
		row := StepReach{Step: step, Count: c, PercentOfBase: percent(c, base)}
		if i == 0 {
			row.PercentOfPrev = 100
		} else {
			row.PercentOfPrev = percent(c, prev)
		}
		report.Steps = append(report.Steps, row)
		prev = c
	}
	return report, nil
}

func percent(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (100 * a) / b
}
