package glrules

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps rules in process; it backs the CLI and tests.
type MemoryStore struct {
	mu    sync.Mutex
	seq   int64
	rules map[string]Rule
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: map[string]Rule{}, now: time.Now}
}

func (m *MemoryStore) ListRules(_ context.Context, activeOnly bool) ([]Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Rule, 0, len(m.rules))
	for _, r := range m.rules {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (m *MemoryStore) GetRule(_ context.Context, id string) (Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok {
		return Rule{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) CreateRule(_ context.Context, rule Rule) (Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	rule.Sequence = m.seq
	rule.CreatedAt = m.now().UTC()
	rule.UpdatedAt = rule.CreatedAt
	m.rules[rule.ID] = rule
	return rule, nil
}

func (m *MemoryStore) UpdateRule(_ context.Context, rule Rule) (Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rules[rule.ID]
	if !ok {
		return Rule{}, ErrNotFound
	}
	rule.Sequence = existing.Sequence
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = m.now().UTC()
	m.rules[rule.ID] = rule
	return rule, nil
}

func (m *MemoryStore) DeleteRule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return ErrNotFound
	}
	delete(m.rules, id)
	return nil
}
