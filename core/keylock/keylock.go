package keylock

import (
	"context"
	"hash/fnv"
	"sync"
)

// Manager hands out one mutex per key. Entries are created on first use under
// the shard lock and dropped as soon as no goroutine holds or waits for them,
// so idle keys cost nothing.
type Manager struct {
	shards []*shard
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	// sem has capacity one; holding the lock means having sent into it.
	sem  chan struct{}
	refs int
}

// New creates a Manager with cfg.Shards shards.
func New(cfg Config) *Manager {
	n := cfg.Shards
	if n <= 0 {
		n = 32
	}
	m := &Manager{shards: make([]*shard, n)}
	for i := range m.shards {
		m.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return m
}

func (m *Manager) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// Lock blocks until the lock for key is held or ctx is done. The returned
// unlock function is safe to call more than once.
func (m *Manager) Lock(ctx context.Context, key string) (unlock func(), err error) {
	s := m.shardFor(key)

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		s.entries[key] = e
	}
	e.refs++
	s.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		s.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			s.release(key, e)
		})
	}, nil
}

func (s *shard) release(key string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(s.entries, key)
	}
}

// Len returns the number of keys currently held or waited on.
func (m *Manager) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}
