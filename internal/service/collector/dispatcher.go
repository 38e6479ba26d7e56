package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/myabroadportal/portal/backend/internal/logger"
	"github.com/myabroadportal/portal/backend/internal/metrics"
	"github.com/myabroadportal/portal/backend/internal/model/lead"
)

// Dispatcher 在后台推送线索。每条线索只尝试一次，结果只记录日志和指标，不返回给调用方。
type Dispatcher struct {
	collector Collector
	timeout   time.Duration
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewDispatcher 包装 c，c 为 nil 时不推送。
func NewDispatcher(c Collector, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if c == nil {
		c = Noop{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		collector: c,
		timeout:   timeout,
		logger:    logger.OrNop(log).Named("collector"),
	}
}

// Submit 在独立的 goroutine 中推送 rec，立即返回。
func (d *Dispatcher) Submit(rec lead.Record) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		start := time.Now()
		err := d.collector.Collect(ctx, rec)
		metrics.LeadCollectorDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.LeadCollectorPosts.WithLabelValues(string(rec.Source), "failed").Inc()
			d.logger.Warn("lead collector post failed",
				zap.String("source", string(rec.Source)),
				zap.String("sessionId", rec.SessionID),
				zap.Error(err))
			return
		}
		metrics.LeadCollectorPosts.WithLabelValues(string(rec.Source), "ok").Inc()
		d.logger.Debug("lead collected",
			zap.String("source", string(rec.Source)),
			zap.String("sessionId", rec.SessionID))
	}()
}

// Wait 等待所有已提交的推送结束。
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
