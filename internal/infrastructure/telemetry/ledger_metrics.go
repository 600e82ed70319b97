package telemetry

import (
	"context"

	"github.com/erp/ledger/internal/domain/purchase"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LowStockCounter reports how many active products sit at or below their reorder level
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// LedgerMetrics turns committed domain events into business counters.
// It subscribes to the event bus, so only work that actually committed is counted.
type LedgerMetrics struct {
	logger *zap.Logger

	salesCompleted     metric.Int64Counter
	saleAmount         metric.Float64Histogram
	purchasesConfirmed metric.Int64Counter
	purchaseAmount     metric.Float64Histogram
	paymentsRecorded   metric.Int64Counter
	lowStockAlerts     metric.Int64Counter

	registration metric.Registration
}

// NewLedgerMetrics creates the instruments on meter. When counter is non-nil
// an observable gauge reports the current number of low-stock products.
func NewLedgerMetrics(meter metric.Meter, counter LowStockCounter, logger *zap.Logger) (*LedgerMetrics, error) {
	m := &LedgerMetrics{logger: logger}
	var err error

	if m.salesCompleted, err = meter.Int64Counter("ledger.sales.completed",
		metric.WithDescription("Completed checkouts"),
		metric.WithUnit("{sale}")); err != nil {
		return nil, err
	}
	if m.saleAmount, err = meter.Float64Histogram("ledger.sales.amount",
		metric.WithDescription("Sale totals including tax"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if m.purchasesConfirmed, err = meter.Int64Counter("ledger.purchases.confirmed",
		metric.WithDescription("Purchases received into stock"),
		metric.WithUnit("{purchase}")); err != nil {
		return nil, err
	}
	if m.purchaseAmount, err = meter.Float64Histogram("ledger.purchases.amount",
		metric.WithDescription("Purchase totals"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if m.paymentsRecorded, err = meter.Int64Counter("ledger.payments.recorded",
		metric.WithDescription("Payments recorded after checkout or receipt"),
		metric.WithUnit("{payment}")); err != nil {
		return nil, err
	}
	if m.lowStockAlerts, err = meter.Int64Counter("ledger.stock.low_stock_alerts",
		metric.WithDescription("Decreases that left a product at or below its reorder level"),
		metric.WithUnit("{alert}")); err != nil {
		return nil, err
	}

	if counter != nil {
		gauge, err := meter.Int64ObservableGauge("ledger.stock.low_stock_products",
			metric.WithDescription("Active products at or below their reorder level"),
			metric.WithUnit("{product}"))
		if err != nil {
			return nil, err
		}
		m.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			n, err := counter.CountLowStock(ctx)
			if err != nil {
				logger.Warn("failed to count low stock products", zap.Error(err))
				return nil
			}
			o.ObserveInt64(gauge, n)
			return nil
		}, gauge)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// EventTypes returns the events that feed the counters
func (m *LedgerMetrics) EventTypes() []string {
	return []string{
		sales.EventTypeSaleCompleted,
		sales.EventTypeSalePaymentRecorded,
		purchase.EventTypePurchaseConfirmed,
		purchase.EventTypePurchasePaymentRecorded,
		stock.EventTypeStockBelowReorderLevel,
	}
}

// Handle records one event. Unknown events are ignored.
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := attribute.String("tenant_id", event.TenantID().String())

	switch e := event.(type) {
	case *sales.SaleCompletedEvent:
		m.salesCompleted.Add(ctx, 1, metric.WithAttributes(tenant))
		m.saleAmount.Record(ctx, e.TotalAmount.InexactFloat64(), metric.WithAttributes(tenant))
	case *purchase.PurchaseConfirmedEvent:
		m.purchasesConfirmed.Add(ctx, 1, metric.WithAttributes(tenant))
		m.purchaseAmount.Record(ctx, e.TotalAmount.InexactFloat64(), metric.WithAttributes(tenant))
	case *sales.SalePaymentRecordedEvent:
		m.paymentsRecorded.Add(ctx, 1, metric.WithAttributes(tenant,
			attribute.String("document_type", "sale"),
			attribute.String("payment_status", e.PaymentStatus)))
	case *purchase.PurchasePaymentRecordedEvent:
		m.paymentsRecorded.Add(ctx, 1, metric.WithAttributes(tenant,
			attribute.String("document_type", "purchase"),
			attribute.String("payment_status", e.PaymentStatus)))
	case *stock.StockBelowReorderLevelEvent:
		m.lowStockAlerts.Add(ctx, 1, metric.WithAttributes(tenant))
	}
	return nil
}

// Close unregisters the low-stock callback
func (m *LedgerMetrics) Close() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

var _ shared.EventHandler = (*LedgerMetrics)(nil)
