package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for a payment against a sale or purchase
type PaymentModel struct {
	BaseModel
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_payments_document,priority:1"`
	DocumentType string          `gorm:"type:varchar(20);not null;index:idx_payments_document,priority:2"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_payments_document,priority:3"`
	PartyType    string          `gorm:"type:varchar(20);not null"`
	PartyID      *uuid.UUID      `gorm:"type:uuid;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method       string          `gorm:"type:varchar(20);not null"`
	PaymentDate  time.Time       `gorm:"not null;index"`
	Reference    string          `gorm:"type:varchar(100)"`
	Notes        string          `gorm:"type:text"`
	VoucherID    *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		BaseEntity:   m.BaseModel.ToDomain(),
		TenantID:     m.TenantID,
		DocumentType: payment.DocumentType(m.DocumentType),
		DocumentID:   m.DocumentID,
		PartyType:    payment.PartyType(m.PartyType),
		PartyID:      m.PartyID,
		Amount:       m.Amount,
		Method:       payment.Method(m.Method),
		PaymentDate:  m.PaymentDate.UTC(),
		Reference:    m.Reference,
		Notes:        m.Notes,
		VoucherID:    m.VoucherID,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{
		TenantID:     p.TenantID,
		DocumentType: string(p.DocumentType),
		DocumentID:   p.DocumentID,
		PartyType:    string(p.PartyType),
		PartyID:      p.PartyID,
		Amount:       p.Amount,
		Method:       string(p.Method),
		PaymentDate:  p.PaymentDate,
		Reference:    p.Reference,
		Notes:        p.Notes,
		VoucherID:    p.VoucherID,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// InvoiceSequenceModel holds the last number handed out for a (tenant, prefix) pair.
// The row is locked for update while a number is allocated.
type InvoiceSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix    string    `gorm:"type:varchar(30);primaryKey"`
	LastValue int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}
