package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/myabroadportal/portal/backend/internal/analysis/intent"
	"github.com/myabroadportal/portal/backend/internal/clock"
	"github.com/myabroadportal/portal/backend/internal/logger"
	"github.com/myabroadportal/portal/backend/internal/metrics"
	"github.com/myabroadportal/portal/backend/internal/model/chat"
	"github.com/myabroadportal/portal/backend/internal/model/lead"
	"github.com/myabroadportal/portal/backend/internal/service/handoff"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyInput      = errors.New("message text is required")
)

// DefaultTypingDelay 机器人每次回复前"输入中"的时长。
const DefaultTypingDelay = time.Second

const subscriberBuffer = 32

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

// WithTypingDelay 覆盖 DefaultTypingDelay。
func WithTypingDelay(d time.Duration) Option {
	return func(svc *Service) {
		if d >= 0 {
			svc.typingDelay = d
		}
	}
}

// WithClassifier 替换内置知识库。
func WithClassifier(c *intent.Classifier) Option {
	return func(svc *Service) {
		if c != nil {
			svc.dialogue = NewDialogue(c)
		}
	}
}

// WithHandoff 设置 WhatsApp 选项使用的格式化器。
func WithHandoff(f *handoff.Formatter) Option {
	return func(svc *Service) {
		if f != nil {
			svc.handoff = f
		}
	}
}

// WithLeadRepository 收集到电话后持久化线索。
func WithLeadRepository(r lead.Repository) Option {
	return func(svc *Service) { svc.leads = r }
}

// WithLogger 设置服务日志。
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) { svc.logger = logger.OrNop(l).Named("chat") }
}

// Service 封装会话状态管理
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	dialogue    *Dialogue
	scheduler   clock.Scheduler
	typingDelay time.Duration
	handoff     *handoff.Formatter
	leads       lead.Repository
	logger      *zap.Logger

	background sync.WaitGroup
}

type session struct {
	mu        sync.Mutex
	id        string
	createdAt time.Time
	conv      Conversation
	messages  []chat.Message
	typing    int
	closed    bool
	timers    clock.Group

	subs    map[int]chan chat.Message
	nextSub int
}

// NewService 创建内存中的聊天服务
func NewService(opts ...Option) *Service {
	s := &Service{
		sessions:    make(map[string]*session),
		dialogue:    NewDialogue(nil),
		scheduler:   clock.Real{},
		typingDelay: DefaultTypingDelay,
		handoff:     handoff.New(handoff.DefaultBaseURL, ""),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession 创建匿名会话，消息记录以欢迎消息开头。
func (s *Service) CreateSession(_ context.Context) (chat.Snapshot, error) {
	sess := &session{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		conv:      Conversation{State: chat.StateIdle, Lead: lead.Record{Source: lead.SourceChat}},
		messages:  make([]chat.Message, 0, 16),
		subs:      make(map[int]chan chat.Message),
	}
	sess.conv.Lead.SessionID = sess.id
	for _, reply := range intent.Opening() {
		sess.appendLocked(chat.SenderBot, reply.Text, reply.Options)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	metrics.ChatSessionsActive.Inc()
	s.logger.Debug("chat session created", zap.String("sessionId", sess.id))
	return sess.snapshotLocked(), nil
}

// GetSession 返回会话及其消息记录的快照。
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return chat.Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// SendMessage 追加访客的文本并安排机器人回复。
func (s *Service) SendMessage(_ context.Context, sessionID, text string) (chat.Snapshot, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Snapshot{}, ErrEmptyInput
	}
	sess, err := s.lookup(sessionID)
	if err != nil {
		return chat.Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return chat.Snapshot{}, ErrSessionNotFound
	}
	sess.appendLocked(chat.SenderUser, text, nil)
	s.processLocked(sess, text)
	return sess.snapshotLocked(), nil
}

// SelectOption 记录对建议选项的点击。WhatsApp 选项返回 handoff 链接且不改变对话状态，
// 其他选项按输入文本处理。
func (s *Service) SelectOption(_ context.Context, sessionID, option string) (string, chat.Snapshot, error) {
	if strings.TrimSpace(option) == "" {
		return "", chat.Snapshot{}, ErrEmptyInput
	}
	sess, err := s.lookup(sessionID)
	if err != nil {
		return "", chat.Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return "", chat.Snapshot{}, ErrSessionNotFound
	}
	sess.appendLocked(chat.SenderUser, option, nil)

	if IsHandoffOption(option) {
		link := s.handoff.Format(sess.conv.Lead, sess.conv.Lead.Interest)
		metrics.Handoffs.WithLabelValues(string(lead.SourceChat)).Inc()
		s.logger.Info("chat handoff", zap.String("sessionId", sess.id))
		return link, sess.snapshotLocked(), nil
	}

	s.processLocked(sess, option)
	return "", sess.snapshotLocked(), nil
}

// Subscribe 返回当前快照，并推送此后追加的每条消息。快照与订阅在同一把锁内
// 完成，两者之间不会漏掉消息。用完必须调用 cancel；会话关闭时 channel 被关闭。
func (s *Service) Subscribe(sessionID string) (chat.Snapshot, <-chan chat.Message, func(), error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return chat.Snapshot{}, nil, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return chat.Snapshot{}, nil, nil, ErrSessionNotFound
	}
	id := sess.nextSub
	sess.nextSub++
	ch := make(chan chat.Message, subscriberBuffer)
	sess.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			sess.mu.Lock()
			defer sess.mu.Unlock()
			if c, ok := sess.subs[id]; ok {
				delete(sess.subs, id)
				close(c)
			}
		})
	}
	return sess.snapshotLocked(), ch, cancel, nil
}

// Close 丢弃会话并取消待发送的回复。
func (s *Service) Close(_ context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.timers.StopAll()

	sess.mu.Lock()
	sess.closed = true
	sess.typing = 0
	for id, ch := range sess.subs {
		delete(sess.subs, id)
		close(ch)
	}
	sess.mu.Unlock()

	metrics.ChatSessionsActive.Dec()
	s.logger.Debug("chat session closed", zap.String("sessionId", sessionID))
	return nil
}

func (s *Service) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("chat %q: %w", sessionID, ErrSessionNotFound)
	}
	return sess, nil
}

func (s *Service) processLocked(sess *session, input string) {
	turn := s.dialogue.Handle(&sess.conv, input)
	if turn.RuleID != "" {
		metrics.ChatIntents.WithLabelValues(turn.RuleID).Inc()
	}
	if turn.Captured {
		s.saveLead(sess.conv.Lead)
	}
	s.replyLocked(sess, turn.Reply)
}

// replyLocked 显示输入中状态，延迟结束后追加回复。
func (s *Service) replyLocked(sess *session, reply intent.Reply) {
	sess.typing++
	t := s.scheduler.AfterFunc(s.typingDelay, func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if sess.closed {
			return
		}
		sess.typing--
		sess.appendLocked(chat.SenderBot, reply.Text, reply.Options)
	})
	sess.timers.Add(t)
}

// saveLead 在后台保存线索，不占用会话的锁。
func (s *Service) saveLead(rec lead.Record) {
	if s.leads == nil {
		return
	}
	rec.CreatedAt = time.Now().UTC()
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.leads.SaveLead(rec); err != nil {
			s.logger.Warn("persist chat lead failed", zap.String("sessionId", rec.SessionID), zap.Error(err))
		}
	}()
}

// Wait 等待后台的线索持久化全部完成。
func (s *Service) Wait() {
	s.background.Wait()
}

func (sess *session) appendLocked(sender chat.Sender, text string, options []string) {
	msg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sess.id,
		Sender:    sender,
		Text:      text,
		Options:   options,
		CreatedAt: time.Now().UTC(),
	}
	sess.messages = append(sess.messages, msg)
	metrics.ChatMessages.WithLabelValues(string(sender)).Inc()

	for _, ch := range sess.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (sess *session) snapshotLocked() chat.Snapshot {
	messages := make([]chat.Message, len(sess.messages))
	copy(messages, sess.messages)
	return chat.Snapshot{
		Session: chat.Session{
			ID:        sess.id,
			State:     sess.conv.State,
			Typing:    sess.typing > 0,
			CreatedAt: sess.createdAt,
		},
		Messages: messages,
	}
}
