package telemetry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestInstrumentDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:telemetry_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	reg, err := InstrumentDB(db, DBInstrumentationConfig{
		Tracing:        true,
		DBName:         "ledger",
		TracerProvider: tp,
		Meter:          meter,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, reg)
	defer reg.Unregister()

	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)

	assert.NotEmpty(t, recorder.Ended(), "query should produce a span")

	got := collect(t, reader)
	assert.Contains(t, got, "db.pool.open_connections")
	assert.Contains(t, got, "db.pool.in_use")
	assert.Contains(t, got, "db.pool.wait_count")
}

func TestInstrumentDB_NothingEnabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	reg, err := InstrumentDB(db, DBInstrumentationConfig{}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, reg)
}
