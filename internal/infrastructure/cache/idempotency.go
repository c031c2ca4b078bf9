// Package cache holds short-lived shared state for the API.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStore remembers request keys for a while so retried writes run once
type IdempotencyStore interface {
	// Claim reserves key for ttl. It returns false if the key is already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees a key so the request can be retried
	Release(ctx context.Context, key string) error
	Close() error
}

// NewIdempotencyStore returns a Redis store when Redis is enabled, else an in-memory one
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Idempotency keys are kept in memory")
		return NewInMemoryIdempotencyStore(), nil
	}
	store, err := NewRedisIdempotencyStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Idempotency keys are kept in Redis", zap.String("addr", cfg.Addr()))
	return store, nil
}

// InMemoryIdempotencyStore keeps keys in a map. Only correct for a single instance.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a store and starts its cleanup loop
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries:  make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop(5 * time.Minute)
	return s
}

// Claim reserves key until now+ttl. Expired keys can be claimed again.
func (s *InMemoryIdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, ok := s.entries[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

// Release forgets key
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup loop. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of keys held, expired ones included
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *InMemoryIdempotencyStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, key)
		}
	}
}

var _ IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
