package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PinStore remembers which candidate endpoint last worked. Concurrent
// writers resolve last writer wins.
type PinStore interface {
	Pinned(ctx context.Context) (string, error)
	Pin(ctx context.Context, endpoint string) error
}

// MemoryPinStore keeps the pin for the life of the process.
type MemoryPinStore struct {
	mu       sync.RWMutex
	endpoint string
}

func NewMemoryPinStore() *MemoryPinStore {
	return &MemoryPinStore{}
}

func (s *MemoryPinStore) Pinned(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint, nil
}

func (s *MemoryPinStore) Pin(_ context.Context, endpoint string) error {
	s.mu.Lock()
	s.endpoint = endpoint
	s.mu.Unlock()
	return nil
}

// RedisPinStore shares the pin across processes of one session.
type RedisPinStore struct {
	redis   *redis.Client
	session string
	ttl     time.Duration
}

// NewRedisPinStore stores the pin under a per-session key. A zero ttl keeps
// the pin until overwritten.
func NewRedisPinStore(client *redis.Client, session string, ttl time.Duration) *RedisPinStore {
	session = strings.TrimSpace(session)
	if session == "" {
		session = "default"
	}
	return &RedisPinStore{redis: client, session: session, ttl: ttl}
}

func (s *RedisPinStore) key() string {
	return fmt.Sprintf("chat:endpoint:%s", s.session)
}

func (s *RedisPinStore) Pinned(ctx context.Context) (string, error) {
	endpoint, err := s.redis.Get(ctx, s.key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("chat: get pinned endpoint: %w", err)
	}
	return endpoint, nil
}

func (s *RedisPinStore) Pin(ctx context.Context, endpoint string) error {
	if err := s.redis.Set(ctx, s.key(), endpoint, s.ttl).Err(); err != nil {
		return fmt.Errorf("chat: pin endpoint: %w", err)
	}
	return nil
}
