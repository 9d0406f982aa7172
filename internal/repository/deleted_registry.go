package repository

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/amats-service/internal/domain"
)

// DeletedRegistry records emails of permanently deleted accounts.
type DeletedRegistry interface {
	Add(ctx context.Context, email string) error
	Contains(ctx context.Context, email string) (bool, error)
	Remove(ctx context.Context, email string) error
}

type memoryDeletedRegistry struct {
	mu     sync.RWMutex
	emails map[string]struct{}
}

// NewMemoryDeletedRegistry keeps the deleted set in process memory.
func NewMemoryDeletedRegistry() DeletedRegistry {
	return &memoryDeletedRegistry{emails: make(map[string]struct{})}
}

func (r *memoryDeletedRegistry) Add(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails[domain.NormalizeEmail(email)] = struct{}{}
	return nil
}

func (r *memoryDeletedRegistry) Contains(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.emails[domain.NormalizeEmail(email)]
	return ok, nil
}

func (r *memoryDeletedRegistry) Remove(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.emails, domain.NormalizeEmail(email))
	return nil
}

type redisDeletedRegistry struct {
	client *redis.Client
	key    string
}

// NewRedisDeletedRegistry stores the deleted set in a Redis set under "<prefix>:deleted_accounts".
func NewRedisDeletedRegistry(client *redis.Client, prefix string) DeletedRegistry {
	if prefix == "" {
		prefix = "amats"
	}
	return &redisDeletedRegistry{client: client, key: prefix + ":deleted_accounts"}
}

func (r *redisDeletedRegistry) Add(ctx context.Context, email string) error {
	return r.client.SAdd(ctx, r.key, domain.NormalizeEmail(email)).Err()
}

func (r *redisDeletedRegistry) Contains(ctx context.Context, email string) (bool, error) {
	return r.client.SIsMember(ctx, r.key, domain.NormalizeEmail(email)).Result()
}

func (r *redisDeletedRegistry) Remove(ctx context.Context, email string) error {
	return r.client.SRem(ctx, r.key, domain.NormalizeEmail(email)).Err()
}
