package funnel

// Store 为 HTTP 处理器和 run 服务提供漏斗定义。
type Store interface {
	List() []Definition
	FindByKind(kind Kind) (Definition, bool)
}

// MemoryStore 基于内存切片实现 Store。
type MemoryStore struct {
	items []Definition
}

// NewMemoryStore 用给定的定义创建 MemoryStore。
func NewMemoryStore(items []Definition) *MemoryStore {
	return &MemoryStore{items: append([]Definition(nil), items...)}
}

// List 按注册顺序返回全部定义。
func (s *MemoryStore) List() []Definition {
	return append([]Definition(nil), s.items...)
}

// FindByKind 按 kind 查找定义。
func (s *MemoryStore) FindByKind(kind Kind) (Definition, bool) {
	for _, item := range s.items {
		if item.Kind == kind {
			return item, true
		}
	}
	return Definition{}, false
}
