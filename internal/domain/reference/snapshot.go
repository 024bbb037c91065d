package reference

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Snapshot reuses one loaded Store for up to ttl. Concurrent callers that
// miss share a single load. A Store with any fetch failure is returned but
// not kept, so the next call retries upstream. A non-positive ttl disables
// reuse.
type Snapshot struct {
	loader StoreLoader
	ttl    time.Duration
	nowFn  func() time.Time
	group  singleflight.Group

	mu      sync.Mutex
	store   *Store
	expires time.Time
}

func NewSnapshot(loader StoreLoader, ttl time.Duration) *Snapshot {
	return &Snapshot{loader: loader, ttl: ttl, nowFn: time.Now}
}

func (s *Snapshot) Load(ctx context.Context) *Store {
	if s.ttl <= 0 {
		return s.loader.Load(ctx)
	}

	s.mu.Lock()
	if s.store != nil && s.nowFn().Before(s.expires) {
		store := s.store
		s.mu.Unlock()
		return store
	}
	s.mu.Unlock()

	v, _, _ := s.group.Do("store", func() (interface{}, error) {
		store := s.loader.Load(ctx)
		if store != nil && len(store.Failures) == 0 {
			s.mu.Lock()
			s.store = store
			s.expires = s.nowFn().Add(s.ttl)
			s.mu.Unlock()
		}
		return store, nil
	})
	store, _ := v.(*Store)
	return store
}
