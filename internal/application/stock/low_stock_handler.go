package stock

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
	"go.uber.org/zap"
)

// LowStockAlertHandler logs a replenishment alert when a product crosses its reorder level
type LowStockAlertHandler struct {
	logger *zap.Logger
}

// NewLowStockAlertHandler creates a new LowStockAlertHandler
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{stock.EventTypeStockBelowReorderLevel}
}

// Handle processes a StockBelowReorderLevelEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*stock.StockBelowReorderLevelEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventTypeStockBelowReorderLevel, event.EventType())
	}

	h.logger.Warn("product stock at or below reorder level",
		zap.String("tenant_id", e.TenantID().String()),
		zap.String("product_id", e.ProductID.String()),
		zap.String("product_name", e.ProductName),
		zap.Int64("stock_quantity", e.StockQuantity),
		zap.Int64("reorder_level", e.ReorderLevel),
	)
	return nil
}

// Ensure LowStockAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockAlertHandler)(nil)
