package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	checkoutLockPrefix     = "ledger:checkout:"
	defaultCheckoutLockTTL = 30 * time.Second
	defaultLockWait        = 2 * time.Second
	lockRetryInterval      = 50 * time.Millisecond
)

type unlocker interface {
	Release(ctx context.Context) error
}

// locker is the part of redislock the guard depends on
type locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (unlocker, error)
}

type redisLocker struct {
	client *redislock.Client
	wait   time.Duration
}

func (l redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (unlocker, error) {
	retries := int(l.wait / lockRetryInterval)
	return l.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryInterval), retries),
	})
}

// RedisCheckoutGuard serializes checkouts that share an idempotency key across
// server instances. The database unique index remains the source of truth;
// the lock only keeps duplicate requests from racing into the retry path.
type RedisCheckoutGuard struct {
	locker locker
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCheckoutGuard creates a guard backed by redislock
func NewRedisCheckoutGuard(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCheckoutGuard {
	return newCheckoutGuard(redisLocker{client: redislock.New(client), wait: defaultLockWait}, ttl, logger)
}

func newCheckoutGuard(l locker, ttl time.Duration, logger *zap.Logger) *RedisCheckoutGuard {
	if ttl <= 0 {
		ttl = defaultCheckoutLockTTL
	}
	return &RedisCheckoutGuard{locker: l, ttl: ttl, logger: logger}
}

// Acquire takes the lock for (tenant, key). A lock still held by another
// request after the wait is a concurrency conflict the client may retry.
// Any other Redis failure degrades to running unguarded.
func (g *RedisCheckoutGuard) Acquire(ctx context.Context, tenantID uuid.UUID, idempotencyKey string) (func(), error) {
	key := checkoutLockKey(tenantID, idempotencyKey)

	lock, err := g.locker.Obtain(ctx, key, g.ttl)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			"A checkout with this idempotency key is already in progress")
	}
	if err != nil {
		// Redis being unavailable must not stop sales; the unique index still rejects duplicates
		g.logger.Warn("checkout lock unavailable, proceeding without it",
			zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}

	return func() {
		// The caller's context may already be cancelled once the response is written
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			g.logger.Warn("failed to release checkout lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func checkoutLockKey(tenantID uuid.UUID, idempotencyKey string) string {
	return checkoutLockPrefix + tenantID.String() + ":" + idempotencyKey
}
