package stock

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypeStockBelowReorderLevel is raised when a decrease crosses the reorder level
const EventTypeStockBelowReorderLevel = "StockBelowReorderLevel"

// StockBelowReorderLevelEvent signals that a product needs replenishment
type StockBelowReorderLevelEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	StockQuantity int64     `json:"stock_quantity"`
	ReorderLevel  int64     `json:"reorder_level"`
}

// NewStockBelowReorderLevelEvent creates the event from the product's current state
func NewStockBelowReorderLevelEvent(p *Product) *StockBelowReorderLevelEvent {
	return &StockBelowReorderLevelEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorderLevel, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		ProductName:     p.Name,
		StockQuantity:   p.StockQuantity,
		ReorderLevel:    p.ReorderLevel,
	}
}
