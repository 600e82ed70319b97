package stock

import (
	"time"

	"github.com/erp/ledger/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	ProductID   uuid.UUID  `json:"product_id" binding:"required"`
	WarehouseID *uuid.UUID `json:"warehouse_id"`
	Quantity    int64      `json:"quantity" binding:"required"`
	Reason      string     `json:"reason" binding:"required,max=500"`
}

// AdjustStockResponse reports the stock before and after an adjustment
type AdjustStockResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	PreviousStock int64     `json:"previous_stock"`
	NewStock      int64     `json:"new_stock"`
	Adjustment    int64     `json:"adjustment"`
	MovementID    uuid.UUID `json:"movement_id"`
}

// ProductStockResponse is the stock view of a product
type ProductStockResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Barcode       string          `json:"barcode,omitempty"`
	StockQuantity int64           `json:"stock_quantity"`
	ReorderLevel  int64           `json:"reorder_level"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	IsLowStock    bool            `json:"is_low_stock"`
	IsActive      bool            `json:"is_active"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID           uuid.UUID  `json:"id"`
	ProductID    uuid.UUID  `json:"product_id"`
	WarehouseID  *uuid.UUID `json:"warehouse_id,omitempty"`
	Quantity     int64      `json:"quantity"`
	MovementType string     `json:"movement_type"`
	ReferenceID  *uuid.UUID `json:"reference_id,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	BalanceAfter int64      `json:"balance_after"`
	MovementDate time.Time  `json:"movement_date"`
}

// MovementListFilter represents filter options for the movement listing
type MovementListFilter struct {
	ProductID    *uuid.UUID `form:"product_id"`
	MovementType string     `form:"movement_type" binding:"omitempty,oneof=purchase sale adjustment return transfer"`
	ReferenceID  *uuid.UUID `form:"reference_id"`
	StartDate    *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// ToProductStockResponse converts a product to its stock response
func ToProductStockResponse(p *stock.Product) ProductStockResponse {
	return ProductStockResponse{
		ProductID:     p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		StockQuantity: p.StockQuantity,
		ReorderLevel:  p.ReorderLevel,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		IsLowStock:    p.IsLowStock(),
		IsActive:      p.IsActive,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToMovementResponse converts a movement to its response
func ToMovementResponse(m *stock.Movement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		WarehouseID:  m.WarehouseID,
		Quantity:     m.Quantity,
		MovementType: m.MovementType.String(),
		ReferenceID:  m.ReferenceID,
		Reason:       m.Reason,
		BalanceAfter: m.BalanceAfter,
		MovementDate: m.MovementDate,
	}
}
