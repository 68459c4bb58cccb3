package services

import (
	"context"
	"sync"
	"time"
)

type expiringEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// expiringMap is a mutex guarded map whose entries vanish after a TTL.
// Reads drop expired entries; Sweep removes the rest in bulk.
type expiringMap[V any] struct {
	mu  sync.Mutex
	m   map[string]expiringEntry[V]
	ttl time.Duration
	now func() time.Time
}

func newExpiringMap[V any](ttl time.Duration, now func() time.Time) *expiringMap[V] {
	if now == nil {
		now = time.Now
	}
	return &expiringMap[V]{
		m:   make(map[string]expiringEntry[V]),
		ttl: ttl,
		now: now,
	}
}

func (s *expiringMap[V]) Set(key string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = expiringEntry[V]{value: v, expiresAt: s.now().Add(s.ttl)}
}

func (s *expiringMap[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero V
	e, ok := s.m[key]
	if !ok {
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.m, key)
		return zero, false
	}
	return e.value, true
}

// GetOrCreate returns the live value for key or stores the one built by create.
// Either way the entry's TTL is refreshed.
func (s *expiringMap[V]) GetOrCreate(key string, create func() V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	e, ok := s.m[key]
	if !ok || now.After(e.expiresAt) {
		e = expiringEntry[V]{value: create()}
	}
	e.expiresAt = now.Add(s.ttl)
	s.m[key] = e
	return e.value
}

// Take returns and removes the value for key.
func (s *expiringMap[V]) Take(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero V
	e, ok := s.m[key]
	if !ok {
		return zero, false
	}
	delete(s.m, key)
	if s.now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

func (s *expiringMap[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (s *expiringMap[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Sweep deletes every expired entry and returns how many were removed.
func (s *expiringMap[V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, e := range s.m {
		if now.After(e.expiresAt) {
			delete(s.m, k)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps the map every interval until ctx is done.
func (s *expiringMap[V]) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
