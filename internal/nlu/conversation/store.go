// Package conversation holds the per-conversation filter context between
// turns: the keyed store behind it, and the Manager that sanitizes and
// merges candidate context.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"inventory-nlu/internal/models"

	"github.com/redis/go-redis/v9"
)

// Store is the keyed context store: conversation id -> the FilterSet left
// behind by the previous completed turn. A missing conversation is not an
// error; Get returns an empty set.
type Store interface {
	Get(ctx context.Context, conversationID string) (models.FilterSet, error)
	Put(ctx context.Context, conversationID string, filters models.FilterSet) error
	Delete(ctx context.Context, conversationID string) error
}

// DefaultKeyPrefix namespaces context keys in Redis.
const DefaultKeyPrefix = "nlu:context:"

// RedisStore keeps contexts as JSON values with a TTL so abandoned
// conversations age out on their own.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) key(conversationID string) string {
	return s.keyPrefix + conversationID
}

func (s *RedisStore) Get(ctx context.Context, conversationID string) (models.FilterSet, error) {
	val, err := s.client.Get(ctx, s.key(conversationID)).Result()
	if err == redis.Nil {
		return models.FilterSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("context get: %w", err)
	}

	var filters models.FilterSet
	if err := json.Unmarshal([]byte(val), &filters); err != nil {
		// A corrupt value is as good as no value; the next Put repairs it.
		return models.FilterSet{}, nil
	}
	return filters, nil
}

func (s *RedisStore) Put(ctx context.Context, conversationID string, filters models.FilterSet) error {
	data, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("context marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.key(conversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("context put: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("context delete: %w", err)
	}
	return nil
}

// MemoryStore is a mutex-guarded in-process Store for tests and embedded
// use. Contexts never expire.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]models.FilterSet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[string]models.FilterSet)}
}

func (s *MemoryStore) Get(_ context.Context, conversationID string) (models.FilterSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if filters, ok := s.contexts[conversationID]; ok {
		return filters.Clone(), nil
	}
	return models.FilterSet{}, nil
}

func (s *MemoryStore) Put(_ context.Context, conversationID string, filters models.FilterSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[conversationID] = filters.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, conversationID)
	return nil
}
