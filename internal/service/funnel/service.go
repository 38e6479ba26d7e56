package funnel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/myabroadportal/portal/backend/internal/clock"
	"github.com/myabroadportal/portal/backend/internal/logger"
	"github.com/myabroadportal/portal/backend/internal/metrics"
	"github.com/myabroadportal/portal/backend/internal/model/funnel"
	"github.com/myabroadportal/portal/backend/internal/model/lead"
	"github.com/myabroadportal/portal/backend/internal/service/analytics"
	"github.com/myabroadportal/portal/backend/internal/service/handoff"
)

const subscriberBuffer = 16

// LeadSubmitter 把完整线索交给推送器，不等待结果。
type LeadSubmitter interface {
	Submit(rec lead.Record)
}

// Option 自定义 Service。
type Option func(*Service)

// WithScheduler 替换真实时钟，主要用于测试。
func WithScheduler(s clock.Scheduler) Option {
	return func(svc *Service) {
		if s != nil {
			svc.scheduler = s
		}
	}
}

// WithHandoff 设置结果链接的格式化器。
func WithHandoff(f *handoff.Formatter) Option {
	return func(svc *Service) {
		if f != nil {
			svc.handoff = f
		}
	}
}

// WithCollector 把每次 gate 提交交给 s。
func WithCollector(s LeadSubmitter) Option {
	return func(svc *Service) { svc.collector = s }
}

// WithLeadRepository 持久化每次 gate 提交。
func WithLeadRepository(r lead.Repository) Option {
	return func(svc *Service) { svc.leads = r }
}

// WithAnalytics 记录步骤到达情况。
func WithAnalytics(a *analytics.Service) Option {
	return func(svc *Service) { svc.analytics = a }
}

// WithLogger 设置服务日志。
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) { svc.logger = logger.OrNop(l).Named("funnel") }
}

// Service 运行引导式漏斗。每个 run 相互独立，由各自的锁保护；定时器属于 run，随 run 一起销毁。
type Service struct {
	store funnel.Store

	mu   sync.RWMutex
	runs map[string]*run

	scheduler clock.Scheduler
	handoff   *handoff.Formatter
	collector LeadSubmitter
	leads     lead.Repository
	analytics *analytics.Service
	logger    *zap.Logger

	background sync.WaitGroup
}

type run struct {
	mu        sync.Mutex
	id        string
	createdAt time.Time
	def       funnel.Definition
	machine   *Machine
	timers    clock.Group
	closed    bool
	outcome   *funnel.Outcome
	handoff   string

	subs    map[int]chan funnel.Run
	nextSub int
}

// NewService 创建提供 store 中漏斗的 Service。
func NewService(store funnel.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		runs:      make(map[string]*run),
		scheduler: clock.Real{},
		handoff:   handoff.New(handoff.DefaultBaseURL, ""),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Definitions 列出可用的漏斗。
func (s *Service) Definitions() []funnel.Definition {
	return s.store.List()
}

// Definition 返回 kind 对应的漏斗。
func (s *Service) Definition(kind funnel.Kind) (funnel.Definition, error) {
	def, ok := s.store.FindByKind(kind)
	if !ok {
		return funnel.Definition{}, fmt.Errorf("funnel %q: %w", kind, ErrUnknownFunnel)
	}
	return def, nil
}

// Start 从第一题开始一个新的 run。
func (s *Service) Start(_ context.Context, kind funnel.Kind) (funnel.Run, error) {
	def, err := s.Definition(kind)
	if err != nil {
		return funnel.Run{}, err
	}

	r := &run{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		def:       def,
		machine:   NewMachine(def),
		subs:      make(map[int]chan funnel.Run),
	}

	s.mu.Lock()
	s.runs[r.id] = r
	s.mu.Unlock()

	metrics.FunnelRunsActive.WithLabelValues(string(kind)).Inc()
	s.logger.Debug("funnel run started", zap.String("runId", r.id), zap.String("funnel", string(kind)))

	r.mu.Lock()
	defer r.mu.Unlock()
	s.enteredLocked(r)
	return r.snapshotLocked(), nil
}

// Get 返回 run 的快照。
func (s *Service) Get(_ context.Context, runID string) (funnel.Run, error) {
	r, err := s.lookup(runID)
	if err != nil {
		return funnel.Run{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), nil
}

// Select 在当前题目上选择一个选项。
func (s *Service) Select(_ context.Context, runID string, index int) (funnel.Run, error) {
	return s.mutate(runID, func(r *run) error {
		committed, err := r.machine.Select(index)
		if err != nil {
			return err
		}
		if committed {
			s.enteredLocked(r)
		}
		return nil
	})
}

// Next 提交已选的答案。
func (s *Service) Next(_ context.Context, runID string) (funnel.Run, error) {
	return s.mutate(runID, func(r *run) error {
		if err := r.machine.Next(); err != nil {
			return err
		}
		s.enteredLocked(r)
		return nil
	})
}

// SubmitContact 解锁结果。线索在后台推送，无论推送结果如何 run 都会到达 result。
func (s *Service) SubmitContact(_ context.Context, runID, name, phone string) (funnel.Run, error) {
	return s.mutate(runID, func(r *run) error {
		if err := r.machine.Submit(name, phone); err != nil {
			return err
		}

		outcome, rec, handoffContext := evaluate(r.def, r.machine)
		rec.SessionID = r.id
		rec.CreatedAt = time.Now().UTC()
		r.outcome = &outcome
		r.handoff = s.handoff.Format(rec, handoffContext)

		if s.collector != nil {
			s.collector.Submit(rec)
		}
		s.persist(rec)
		metrics.Handoffs.WithLabelValues(string(rec.Source)).Inc()
		s.logger.Info("funnel lead captured",
			zap.String("runId", r.id),
			zap.String("funnel", string(r.def.Kind)),
			zap.String("outcome", handoffContext))

		s.enteredLocked(r)
		return nil
	})
}

// Subscribe 在 run 每次变化后推送快照。run 关闭或调用 cancel 时 channel 被关闭。
func (s *Service) Subscribe(runID string) (<-chan funnel.Run, func(), error) {
	r, err := s.lookup(runID)
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, nil, ErrRunNotFound
	}
	id := r.nextSub
	r.nextSub++
	ch := make(chan funnel.Run, subscriberBuffer)
	r.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel, nil
}

// Close 丢弃 run 并取消分析中的定时器。
func (s *Service) Close(_ context.Context, runID string) error {
	s.mu.Lock()
	r, ok := s.runs[runID]
	if ok {
		delete(s.runs, runID)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("run %q: %w", runID, ErrRunNotFound)
	}

	r.timers.StopAll()

	r.mu.Lock()
	r.closed = true
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.mu.Unlock()

	metrics.FunnelRunsActive.WithLabelValues(string(r.def.Kind)).Dec()
	s.logger.Debug("funnel run closed", zap.String("runId", runID))
	return nil
}

// Wait 等待后台的线索持久化全部完成。
func (s *Service) Wait() {
	s.background.Wait()
}

// persist 在后台保存线索，不占用 run 的锁。
func (s *Service) persist(rec lead.Record) {
	if s.leads == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.leads.SaveLead(rec); err != nil {
			s.logger.Warn("persist funnel lead failed", zap.String("runId", rec.SessionID), zap.Error(err))
		}
	}()
}

func (s *Service) lookup(runID string) (*run, error) {
	s.mu.RLock()
	r, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("run %q: %w", runID, ErrRunNotFound)
	}
	return r, nil
}

func (s *Service) mutate(runID string, fn func(r *run) error) (funnel.Run, error) {
	r, err := s.lookup(runID)
	if err != nil {
		return funnel.Run{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return funnel.Run{}, ErrRunNotFound
	}
	if err := fn(r); err != nil {
		return r.snapshotLocked(), err
	}
	r.publishLocked()
	return r.snapshotLocked(), nil
}

// enteredLocked 记录 run 当前步骤的到达情况，进入 analyzing 时启动分析定时器。
func (s *Service) enteredLocked(r *run) {
	stage := r.machine.Stage()
	step := string(stage)
	if stage == funnel.StageQuestion {
		step = funnel.QuestionStep(r.def.Questions[r.machine.position].ID)
	}
	metrics.FunnelStages.WithLabelValues(string(r.def.Kind), string(stage)).Inc()
	s.analytics.Reach(string(r.def.Kind), step, r.id)

	if stage == funnel.StageAnalyzing {
		s.startAnalyzingLocked(r)
	}
}

func (s *Service) startAnalyzingLocked(r *run) {
	r.timers.Add(s.scheduler.AfterFunc(r.def.AnalyzeDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || !r.machine.Analyzed() {
			return
		}
		s.enteredLocked(r)
		r.publishLocked()
	}))

	if r.def.StatusInterval > 0 && len(r.def.StatusMessages) > 1 {
		s.scheduleTickLocked(r)
	}
}

func (s *Service) scheduleTickLocked(r *run) {
	r.timers.Add(s.scheduler.AfterFunc(r.def.StatusInterval, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || r.machine.Stage() != funnel.StageAnalyzing {
			return
		}
		if r.machine.Tick() {
			r.publishLocked()
		}
		s.scheduleTickLocked(r)
	}))
}

func (r *run) publishLocked() {
	snap := r.snapshotLocked()
	for _, ch := range r.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (r *run) snapshotLocked() funnel.Run {
	out := funnel.Run{ID: r.id, CreatedAt: r.createdAt}
	r.machine.View(&out)
	if r.outcome != nil {
		o := *r.outcome
		out.Outcome = &o
		out.Handoff = r.handoff
	}
	return out
}

// evaluate 计算完成的 run 的结果、待投递的线索以及 handoff 消息中的上下文。
func evaluate(def funnel.Definition, m *Machine) (funnel.Outcome, lead.Record, string) {
	name, phone := m.Contact()
	rec := lead.Record{Source: lead.Source(def.Kind), Name: name, Phone: phone, Answers: m.Answers()}

	switch def.Kind {
	case funnel.KindQuiz:
		outcome := ScoreQuiz(rec.Answers)
		rec.Score, rec.Band = outcome.Score, outcome.Band
		return outcome, rec, outcome.Band
	case funnel.KindMatchmaker:
		rec.Goal = m.Field(FieldGoal)
		rec.Budget = m.Field(FieldBudget)
		rec.Education = m.Field(FieldEducation)
		rec.Recommendation = Recommend(rec.Goal, rec.Budget)
		return funnel.Outcome{Recommendation: rec.Recommendation}, rec, rec.Recommendation
	default:
		return funnel.Outcome{}, rec, ""
	}
}
