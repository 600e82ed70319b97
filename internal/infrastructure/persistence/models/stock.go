package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the stock view of a product
type ProductModel struct {
	TenantAggregateModel
	Name          string          `gorm:"type:varchar(200);not null"`
	SKU           string          `gorm:"column:sku;type:varchar(50);index"`
	Barcode       string          `gorm:"type:varchar(100);index"`
	StockQuantity int64           `gorm:"not null"`
	ReorderLevel  int64           `gorm:"not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	IsActive      bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *stock.Product {
	p := &stock.Product{
		Name:          m.Name,
		SKU:           m.SKU,
		Barcode:       m.Barcode,
		StockQuantity: m.StockQuantity,
		ReorderLevel:  m.ReorderLevel,
		PurchasePrice: m.PurchasePrice,
		SalePrice:     m.SalePrice,
		TaxPercent:    m.TaxPercent,
		IsActive:      m.IsActive,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *stock.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.SKU = p.SKU
	m.Barcode = p.Barcode
	m.StockQuantity = p.StockQuantity
	m.ReorderLevel = p.ReorderLevel
	m.PurchasePrice = p.PurchasePrice
	m.SalePrice = p.SalePrice
	m.TaxPercent = p.TaxPercent
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *stock.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// InventoryMovementModel is the persistence model for an append-only stock movement
type InventoryMovementModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_movements_tenant_product,priority:1"`
	ProductID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_movements_tenant_product,priority:2"`
	WarehouseID  *uuid.UUID `gorm:"type:uuid"`
	Quantity     int64      `gorm:"not null"`
	MovementType string     `gorm:"type:varchar(20);not null"`
	ReferenceID  *uuid.UUID `gorm:"type:uuid;index"`
	Reason       string     `gorm:"type:varchar(500)"`
	BalanceAfter int64      `gorm:"not null"`
	MovementDate time.Time  `gorm:"not null;index"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryMovementModel) TableName() string {
	return "inventory_movements"
}

// ToDomain converts the persistence model to a domain Movement
func (m *InventoryMovementModel) ToDomain() *stock.Movement {
	mv := &stock.Movement{
		TenantID:     m.TenantID,
		ProductID:    m.ProductID,
		WarehouseID:  m.WarehouseID,
		Quantity:     m.Quantity,
		MovementType: stock.MovementType(m.MovementType),
		ReferenceID:  m.ReferenceID,
		Reason:       m.Reason,
		BalanceAfter: m.BalanceAfter,
		MovementDate: m.MovementDate.UTC(),
	}
	mv.ID = m.ID
	mv.CreatedAt = m.CreatedAt.UTC()
	mv.UpdatedAt = m.UpdatedAt.UTC()
	return mv
}

// InventoryMovementModelFromDomain creates a new persistence model from a domain Movement
func InventoryMovementModelFromDomain(mv *stock.Movement) *InventoryMovementModel {
	return &InventoryMovementModel{
		ID:           mv.ID,
		TenantID:     mv.TenantID,
		ProductID:    mv.ProductID,
		WarehouseID:  mv.WarehouseID,
		Quantity:     mv.Quantity,
		MovementType: string(mv.MovementType),
		ReferenceID:  mv.ReferenceID,
		Reason:       mv.Reason,
		BalanceAfter: mv.BalanceAfter,
		MovementDate: mv.MovementDate,
		CreatedAt:    mv.CreatedAt,
		UpdatedAt:    mv.UpdatedAt,
	}
}
