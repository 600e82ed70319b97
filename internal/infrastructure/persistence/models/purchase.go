package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/purchase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseModel is the persistence model for a supplier invoice
type PurchaseModel struct {
	AggregateModel
	TenantID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_purchases_tenant_invoice,priority:1"`
	InvoiceNumber  string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchases_tenant_invoice,priority:2"`
	SupplierID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	PurchaseDate   time.Time           `gorm:"not null;index"`
	Subtotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Status         string              `gorm:"type:varchar(20);not null;index"`
	PaymentStatus  string              `gorm:"type:varchar(20);not null;index"`
	Notes          string              `gorm:"type:text"`
	Items          []PurchaseItemModel `gorm:"foreignKey:PurchaseID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// ToDomain converts the persistence model to a domain Purchase including loaded items
func (m *PurchaseModel) ToDomain() *purchase.Purchase {
	p := &purchase.Purchase{
		InvoiceNumber:  m.InvoiceNumber,
		SupplierID:     m.SupplierID,
		PurchaseDate:   m.PurchaseDate.UTC(),
		Subtotal:       m.Subtotal,
		TaxAmount:      m.TaxAmount,
		DiscountAmount: m.DiscountAmount,
		TotalAmount:    m.TotalAmount,
		PaidAmount:     m.PaidAmount,
		Status:         purchase.Status(m.Status),
		PaymentStatus:  payment.Status(m.PaymentStatus),
		Notes:          m.Notes,
		Items:          make([]purchase.Item, 0, len(m.Items)),
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	p.TenantID = m.TenantID
	for _, it := range m.Items {
		p.Items = append(p.Items, purchase.Item{
			ID:          it.ID,
			PurchaseID:  it.PurchaseID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Tax:         it.Tax,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal,
		})
	}
	return p
}

// PurchaseModelFromDomain creates a new persistence model from a domain Purchase
func PurchaseModelFromDomain(p *purchase.Purchase) *PurchaseModel {
	m := &PurchaseModel{
		TenantID:       p.TenantID,
		InvoiceNumber:  p.InvoiceNumber,
		SupplierID:     p.SupplierID,
		PurchaseDate:   p.PurchaseDate,
		Subtotal:       p.Subtotal,
		TaxAmount:      p.TaxAmount,
		DiscountAmount: p.DiscountAmount,
		TotalAmount:    p.TotalAmount,
		PaidAmount:     p.PaidAmount,
		Status:         string(p.Status),
		PaymentStatus:  string(p.PaymentStatus),
		Notes:          p.Notes,
		Items:          make([]PurchaseItemModel, 0, len(p.Items)),
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	for _, it := range p.Items {
		m.Items = append(m.Items, PurchaseItemModel{
			ID:          it.ID,
			PurchaseID:  p.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Tax:         it.Tax,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal,
			CreatedAt:   p.CreatedAt,
		})
	}
	return m
}

// PurchaseItemModel is the persistence model for a purchase line
type PurchaseItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Tax         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItemModel) TableName() string {
	return "purchase_items"
}
