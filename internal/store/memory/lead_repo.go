package memory

import (
	"sync"

	"github.com/myabroadportal/portal/backend/internal/model/lead"
)

// LeadRepo 内存中的线索存储，未配置数据库时使用。
type LeadRepo struct {
	mu    sync.RWMutex
	leads []lead.Record
}

func NewLeadRepo() *LeadRepo {
	return &LeadRepo{}
}

func (r *LeadRepo) SaveLead(rec lead.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, rec)
	return nil
}

// List 按保存顺序返回全部线索的副本。
func (r *LeadRepo) List() []lead.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]lead.Record(nil), r.leads...)
}
