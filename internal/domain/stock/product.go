package stock

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeProduct is the aggregate type name used by stock events
const AggregateTypeProduct = "Product"

// Product is the stock-ledger view of a catalog product.
// Master data (name, prices, barcode) is owned by the catalog; the ledger only ever
// changes StockQuantity, and only through ApplyMovement.
type Product struct {
	shared.TenantAggregateRoot
	Name          string
	SKU           string
	Barcode       string
	StockQuantity int64
	ReorderLevel  int64
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	TaxPercent    decimal.Decimal
	IsActive      bool
}

// NewProduct creates a product record. Used when seeding master data and in tests.
func NewProduct(tenantID uuid.UUID, name, sku string, initialStock int64) (*Product, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	if initialStock < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Initial stock cannot be negative")
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		SKU:                 sku,
		StockQuantity:       initialStock,
		PurchasePrice:       decimal.Zero,
		SalePrice:           decimal.Zero,
		TaxPercent:          decimal.Zero,
		IsActive:            true,
	}, nil
}

// ApplyMovement changes the on-hand quantity by delta.
// It fails with an InsufficientStockError when the result would be negative and leaves
// the product untouched in that case. A StockBelowReorderLevel event is raised when a
// decrease takes the quantity to or under a positive reorder level.
func (p *Product) ApplyMovement(delta int64) (previous, current int64, err error) {
	previous = p.StockQuantity
	next := previous + delta
	if next < 0 {
		requested := -delta
		return previous, previous, NewInsufficientStockError(p.ID, p.Name, previous, requested)
	}
	p.StockQuantity = next
	p.Touch()

	if delta < 0 && p.IsLowStock() && previous > p.ReorderLevel {
		p.AddDomainEvent(NewStockBelowReorderLevelEvent(p))
	}
	return previous, next, nil
}

// IsLowStock reports whether the product is at or below its reorder level.
// Products without a reorder level are never low.
func (p *Product) IsLowStock() bool {
	return p.ReorderLevel > 0 && p.StockQuantity <= p.ReorderLevel
}

// CanFulfil reports whether qty units are on hand
func (p *Product) CanFulfil(qty int64) bool {
	return p.StockQuantity >= qty
}

// UpdatePurchasePrice records the latest purchase cost
func (p *Product) UpdatePurchasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Purchase price cannot be negative")
	}
	p.PurchasePrice = price
	p.Touch()
	return nil
}
