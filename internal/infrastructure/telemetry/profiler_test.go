package telemetry

import (
	"context"
	"errors"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.ProfilingConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(config.ProfilingConfig{Enabled: true, ApplicationName: "erp-ledger"}, zap.NewNop())
	assert.ErrorContains(t, err, "server_address")

	_, err = NewProfiler(config.ProfilingConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, zap.NewNop())
	assert.ErrorContains(t, err, "application_name")
}

func TestNewProfiler_StartFailure(t *testing.T) {
	var got pyroscope.Config
	orig := profileStarter
	profileStarter = func(cfg pyroscope.Config) (*pyroscope.Profiler, error) {
		got = cfg
		return nil, errors.New("connection refused")
	}
	t.Cleanup(func() { profileStarter = orig })

	_, err := NewProfiler(config.ProfilingConfig{
		Enabled:         true,
		ServerAddress:   "http://pyroscope:4040",
		ApplicationName: "erp-ledger",
		MutexProfiling:  true,
	}, zap.NewNop())

	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, "erp-ledger", got.ApplicationName)
	assert.Contains(t, got.ProfileTypes, pyroscope.ProfileCPU)
	assert.Contains(t, got.ProfileTypes, pyroscope.ProfileMutexDuration)
	assert.NotContains(t, got.ProfileTypes, pyroscope.ProfileBlockCount)
}

func TestWithProfilingLabels(t *testing.T) {
	long := strings.Repeat("x", MaxLabelValueLength+10)
	called := false

	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelRoute:     "/api/v1/sales",
		ProfilingLabelOperation: long,
		"request_id":            "req-1",
		"empty":                 "",
	}, func(ctx context.Context) {
		called = true

		route, ok := pprof.Label(ctx, ProfilingLabelRoute)
		assert.True(t, ok)
		assert.Equal(t, "/api/v1/sales", route)

		op, _ := pprof.Label(ctx, ProfilingLabelOperation)
		assert.Len(t, op, MaxLabelValueLength)

		_, ok = pprof.Label(ctx, "request_id")
		assert.False(t, ok)
		_, ok = pprof.Label(ctx, "empty")
		assert.False(t, ok)
	})

	assert.True(t, called)
}

func TestWithProfilingLabels_NoLabels(t *testing.T) {
	ctx := context.Background()
	WithProfilingLabels(ctx, nil, func(got context.Context) {
		assert.Equal(t, ctx, got)
	})
}

func TestSanitizeLabels_Sorted(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{"tenant_id": "t-1", "method": "POST", "route": "/r"})
	assert.Equal(t, []string{"method", "POST", "route", "/r", "tenant_id", "t-1"}, pairs)
}
