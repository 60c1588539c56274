// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package syncengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/models"
)

// ErrSyncInProgress is returned by Acquire when another run already holds
// the (tenant, resource) scope.
var ErrSyncInProgress = errors.New("sync already in progress for this tenant and resource")

const defaultLockTTL = 15 * time.Minute

// Locker serializes sync runs per (tenant, resource). Acquire returns
// ErrSyncInProgress when the scope is held; the release func is safe to call
// more than once.
type Locker interface {
	Acquire(ctx context.Context, tenantID uuid.UUID, resource models.Resource) (release func(), err error)
}

func lockKey(tenantID uuid.UUID, resource models.Resource) string {
	return "upsync:lock:" + tenantID.String() + ":" + string(resource)
}

// MemoryLocker is the single-replica default. Locks live in a process-local
// map and vanish with the process, so no TTL is needed.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// Acquire implements Locker.
func (l *MemoryLocker) Acquire(_ context.Context, tenantID uuid.UUID, resource models.Resource) (func(), error) {
	key := lockKey(tenantID, resource)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return nil, ErrSyncInProgress
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the lock only when the stored owner token matches,
// so a lock that expired and was re-acquired by another replica is never
// deleted by the original holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisLocker coordinates runs across replicas with SET NX EX. The TTL is a
// safety net: a crashed holder's lock expires instead of wedging the scope.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker over an existing Redis client.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire implements Locker.
func (l *RedisLocker) Acquire(ctx context.Context, tenantID uuid.UUID, resource models.Resource) (func(), error) {
	key := lockKey(tenantID, resource)
	owner := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release must work even when the run's context is already gone.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, owner).Err(); err != nil {
				logging.Warn().
					Err(err).
					Str("component", "syncengine").
					Str("key", key).
					Msg("Failed to release redis sync lock")
			}
		})
	}, nil
}

// NewLocker builds the locker named by the config driver. The redis driver
// is verified with a ping so a bad address fails at startup, not mid-run.
func NewLocker(cfg *config.LocksConfig) (Locker, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryLocker(), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
		}

		logging.Info().
			Str("component", "syncengine").
			Str("addr", cfg.RedisAddr).
			Dur("ttl", cfg.TTL).
			Msg("Using redis sync locks")
		return NewRedisLocker(client, cfg.TTL), nil
	}

	return nil, fmt.Errorf("unknown lock driver %q (valid: memory, redis)", cfg.Driver)
}
