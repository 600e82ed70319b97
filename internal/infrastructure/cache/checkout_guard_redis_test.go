//go:build integration

package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return config.RedisConfig{Enabled: true, Host: host, Port: p}
}

func TestRedisCheckoutGuard_AgainstRedis(t *testing.T) {
	cfg := startRedis(t)
	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	guard := NewRedisCheckoutGuard(client, 10*time.Second, zap.NewNop())
	tenantID := uuid.New()

	release, err := guard.Acquire(context.Background(), tenantID, "till-7-0001")
	require.NoError(t, err)

	start := time.Now()
	_, err = guard.Acquire(context.Background(), tenantID, "till-7-0001")
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	assert.GreaterOrEqual(t, time.Since(start), time.Second, "second caller should wait before giving up")

	release()

	again, err := guard.Acquire(context.Background(), tenantID, "till-7-0001")
	require.NoError(t, err)
	again()
}
