package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/almahra/storefront/internal/cart"
	redisclient "github.com/almahra/storefront/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(name string) string
	Ping(ctx context.Context) error
}

// RedisStore keeps the guest snapshot under a namespaced Redis key.
type RedisStore struct {
	store kvStore
	key   string
	ttl   time.Duration
}

func NewRedisStore(store kvStore, name string, ttl time.Duration) (*RedisStore, error) {
	if store == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("snapshot key is required")
	}
	return &RedisStore{store: store, key: store.SnapshotKey(trimmed), ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*cart.State, error) {
	payload, err := s.store.Get(ctx, s.key)
	if redisclient.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart snapshot: %w", err)
	}
	return decode([]byte(payload))
}

func (s *RedisStore) Save(ctx context.Context, state cart.State) error {
	payload, err := encode(state)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, string(payload), s.ttl); err != nil {
		return fmt.Errorf("set cart snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
