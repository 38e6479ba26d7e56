// Package memory 进程内的存储实现。
package memory

import (
	"context"
	"sync"
)

// FunnelRepo 在内存中统计每个步骤到达过的不同 run。
type FunnelRepo struct {
	mu     sync.RWMutex
	counts map[string]map[string]map[string]struct{}
}

func NewFunnelRepo() *FunnelRepo {
	return &FunnelRepo{counts: make(map[string]map[string]map[string]struct{})}
}

func (r *FunnelRepo) Hit(_ context.Context, funnel, step, runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps, ok := r.counts[funnel]
	if !ok {
		steps = make(map[string]map[string]struct{})
		r.counts[funnel] = steps
	}
	m, ok := steps[step]
	if !ok {
		m = make(map[string]struct{})
		steps[step] = m
	}
	m[runID] = struct{}{}
	return nil
}

func (r *FunnelRepo) Counts(_ context.Context, funnel string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.counts[funnel]))
	for step, set := range r.counts[funnel] {
		out[step] = len(set)
	}
	return out, nil
}
