package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/purchase"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type fixedLowStock struct {
	n   int64
	err error
}

func (f fixedLowStock) CountLowStock(context.Context) (int64, error) { return f.n, f.err }

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestLedgerMetrics_CountsCommittedEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	m, err := NewLedgerMetrics(meter, fixedLowStock{n: 4}, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	tenantID := uuid.New()
	ctx := context.Background()
	base := func(eventType string) shared.BaseDomainEvent {
		return shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), tenantID)
	}

	events := []shared.DomainEvent{
		&sales.SaleCompletedEvent{BaseDomainEvent: base(sales.EventTypeSaleCompleted), TotalAmount: decimal.NewFromInt(110)},
		&sales.SaleCompletedEvent{BaseDomainEvent: base(sales.EventTypeSaleCompleted), TotalAmount: decimal.NewFromInt(30)},
		&sales.SalePaymentRecordedEvent{BaseDomainEvent: base(sales.EventTypeSalePaymentRecorded), PaymentStatus: "partial"},
		&purchase.PurchaseConfirmedEvent{BaseDomainEvent: base(purchase.EventTypePurchaseConfirmed), TotalAmount: decimal.NewFromInt(80)},
		&purchase.PurchasePaymentRecordedEvent{BaseDomainEvent: base(purchase.EventTypePurchasePaymentRecorded), PaymentStatus: "paid"},
		&stock.StockBelowReorderLevelEvent{BaseDomainEvent: base(stock.EventTypeStockBelowReorderLevel)},
	}
	for _, e := range events {
		require.NoError(t, m.Handle(ctx, e))
	}

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["ledger.sales.completed"]))
	assert.Equal(t, int64(1), sumOf(t, got["ledger.purchases.confirmed"]))
	assert.Equal(t, int64(2), sumOf(t, got["ledger.payments.recorded"]))
	assert.Equal(t, int64(1), sumOf(t, got["ledger.stock.low_stock_alerts"]))

	hist, ok := got["ledger.sales.amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, 140.0, hist.DataPoints[0].Sum)

	gauge, ok := got["ledger.stock.low_stock_products"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(4), gauge.DataPoints[0].Value)
}

func TestLedgerMetrics_LowStockCountFailureSkipsObservation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	m, err := NewLedgerMetrics(meter, fixedLowStock{err: errors.New("db down")}, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	got := collect(t, reader)
	_, present := got["ledger.stock.low_stock_products"]
	assert.False(t, present)
}

func TestLedgerMetrics_SubscribesToLedgerEvents(t *testing.T) {
	m, err := NewLedgerMetrics(sdkmetric.NewMeterProvider().Meter("test"), nil, zap.NewNop())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"SaleCompleted", "SalePaymentRecorded", "PurchaseConfirmed", "PurchasePaymentRecorded", "StockBelowReorderLevel",
	}, m.EventTypes())
	assert.NoError(t, m.Close())
}
