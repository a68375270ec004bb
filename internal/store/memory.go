package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore implements Store in process memory. It exists for tests and
// for running the agent without a Valkey server; semantics match
// ValkeyStore, including subtree reads and ancestor notification.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]json.RawMessage
	subs    map[string]map[int]func(json.RawMessage)
	nextSub int
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]json.RawMessage),
		subs:   make(map[string]map[int]func(json.RawMessage)),
	}
}

func (s *MemoryStore) Write(ctx context.Context, path string, value any) error {
	s.mu.Lock()
	if value == nil {
		delete(s.values, path)
	} else {
		data, err := json.Marshal(value)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("store: encode %s: %w", path, err)
		}
		s.values[path] = data
	}
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *MemoryStore) Read(_ context.Context, path string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(path)
}

func (s *MemoryStore) Subscribe(ctx context.Context, path string, fn func(json.RawMessage)) (func(), error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[path] == nil {
		s.subs[path] = make(map[int]func(json.RawMessage))
	}
	s.subs[path][id] = fn
	current, _ := s.readLocked(path)
	s.mu.Unlock()

	if current != nil {
		fn(current)
	}
	cancel := func() {
		s.mu.Lock()
		delete(s.subs[path], id)
		s.mu.Unlock()
	}
	return cancel, nil
}

func (s *MemoryStore) Append(ctx context.Context, path string, value any) error {
	return s.Write(ctx, path+"/"+autoKey(), value)
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) readLocked(path string) (json.RawMessage, error) {
	if v, ok := s.values[path]; ok {
		return v, nil
	}
	prefix := path + "/"
	entries := make(map[string]json.RawMessage)
	for k, v := range s.values {
		if strings.HasPrefix(k, prefix) {
			entries[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return assembleSubtree(entries)
}

// notify delivers the latest value of each watched ancestor path to its
// subscribers. Delivery is synchronous on the writer's goroutine, which
// keeps tests deterministic; callbacks must not call back into the store
// while holding their own locks in a way that re-enters the writer.
func (s *MemoryStore) notify(changed string) {
	type delivery struct {
		fn    func(json.RawMessage)
		value json.RawMessage
	}
	var pending []delivery
	s.mu.Lock()
	for _, path := range notifyPaths(changed) {
		watchers := s.subs[path]
		if len(watchers) == 0 {
			continue
		}
		value, _ := s.readLocked(path)
		for _, fn := range watchers {
			pending = append(pending, delivery{fn: fn, value: value})
		}
	}
	s.mu.Unlock()
	for _, d := range pending {
		d.fn(d.value)
	}
}
