package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLock struct {
	released *int
	err      error
}

func (l fakeLock) Release(context.Context) error {
	*l.released++
	return l.err
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
	err      error
	keys     []string
	ttls     []time.Duration
}

func (f *fakeLocker) Obtain(_ context.Context, key string, ttl time.Duration) (unlocker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.ttls = append(f.ttls, ttl)
	if f.err != nil {
		return nil, f.err
	}
	if f.held[key] {
		return nil, redislock.ErrNotObtained
	}
	f.held[key] = true
	return fakeLock{released: &f.released, err: redislock.ErrLockNotHeld}, nil
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func TestRedisCheckoutGuard_Acquire(t *testing.T) {
	tenantID := uuid.New()
	l := newFakeLocker()
	guard := newCheckoutGuard(l, 0, zap.NewNop())

	release, err := guard.Acquire(context.Background(), tenantID, "till-1-0001")
	require.NoError(t, err)

	_, err = guard.Acquire(context.Background(), tenantID, "till-1-0001")
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	assert.True(t, shared.IsRetryable(err))

	otherTenant, err := guard.Acquire(context.Background(), uuid.New(), "till-1-0001")
	require.NoError(t, err, "keys are scoped per tenant")
	otherTenant()

	release()
	assert.Equal(t, 2, l.released)
	assert.Equal(t, "ledger:checkout:"+tenantID.String()+":till-1-0001", l.keys[0])
	assert.Equal(t, defaultCheckoutLockTTL, l.ttls[0])
}

func TestRedisCheckoutGuard_RedisDownDegrades(t *testing.T) {
	l := newFakeLocker()
	l.err = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	guard := newCheckoutGuard(l, 5*time.Second, zap.NewNop())

	release, err := guard.Acquire(context.Background(), uuid.New(), "k")

	require.NoError(t, err)
	require.NotNil(t, release)
	release()
	assert.Equal(t, 0, l.released)
	assert.Equal(t, 5*time.Second, l.ttls[0])
}
