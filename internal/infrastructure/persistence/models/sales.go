package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for a point-of-sale transaction
type SaleModel struct {
	AggregateModel
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sales_tenant_invoice,priority:1;uniqueIndex:idx_sales_tenant_idempotency,priority:1"`
	InvoiceNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_tenant_invoice,priority:2"`
	SaleDate       time.Time       `gorm:"not null;index"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status         string          `gorm:"type:varchar(20);not null;index"`
	PaymentStatus  string          `gorm:"type:varchar(20);not null;index"`
	IdempotencyKey *string         `gorm:"type:varchar(100);uniqueIndex:idx_sales_tenant_idempotency,priority:2"`
	Notes          string          `gorm:"type:text"`
	Items          []SaleItemModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale including loaded items
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		InvoiceNumber:  m.InvoiceNumber,
		SaleDate:       m.SaleDate.UTC(),
		CustomerID:     m.CustomerID,
		Subtotal:       m.Subtotal,
		TaxAmount:      m.TaxAmount,
		DiscountAmount: m.DiscountAmount,
		TotalAmount:    m.TotalAmount,
		PaidAmount:     m.PaidAmount,
		Status:         sales.Status(m.Status),
		PaymentStatus:  payment.Status(m.PaymentStatus),
		IdempotencyKey: m.IdempotencyKey,
		Notes:          m.Notes,
		Items:          make([]sales.Item, 0, len(m.Items)),
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	s.TenantID = m.TenantID
	for _, it := range m.Items {
		s.Items = append(s.Items, sales.Item{
			ID:          it.ID,
			SaleID:      it.SaleID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Tax:         it.Tax,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal,
			UnitCost:    it.UnitCost,
		})
	}
	return s
}

// SaleModelFromDomain creates a new persistence model from a domain Sale
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{
		TenantID:       s.TenantID,
		InvoiceNumber:  s.InvoiceNumber,
		SaleDate:       s.SaleDate,
		CustomerID:     s.CustomerID,
		Subtotal:       s.Subtotal,
		TaxAmount:      s.TaxAmount,
		DiscountAmount: s.DiscountAmount,
		TotalAmount:    s.TotalAmount,
		PaidAmount:     s.PaidAmount,
		Status:         string(s.Status),
		PaymentStatus:  string(s.PaymentStatus),
		IdempotencyKey: s.IdempotencyKey,
		Notes:          s.Notes,
		Items:          make([]SaleItemModel, 0, len(s.Items)),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	for _, it := range s.Items {
		m.Items = append(m.Items, SaleItemModel{
			ID:          it.ID,
			SaleID:      s.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Tax:         it.Tax,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal,
			UnitCost:    it.UnitCost,
			CreatedAt:   s.CreatedAt,
		})
	}
	return m
}

// SaleItemModel is the persistence model for a sale line
type SaleItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Tax         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}
