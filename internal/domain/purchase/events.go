package purchase

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypePurchaseConfirmed       = "PurchaseConfirmed"
	EventTypePurchasePaymentRecorded = "PurchasePaymentRecorded"
)

// PurchaseConfirmedEvent is raised when a purchase is received into stock
type PurchaseConfirmedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewPurchaseConfirmedEvent creates a PurchaseConfirmedEvent
func NewPurchaseConfirmedEvent(p *Purchase) *PurchaseConfirmedEvent {
	return &PurchaseConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseConfirmed, AggregateTypePurchase, p.ID, p.TenantID),
		InvoiceNumber:   p.InvoiceNumber,
		SupplierID:      p.SupplierID,
		TotalAmount:     p.TotalAmount,
	}
}

// PurchasePaymentRecordedEvent is raised when a supplier payment is recorded
type PurchasePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
}

// NewPurchasePaymentRecordedEvent creates a PurchasePaymentRecordedEvent
func NewPurchasePaymentRecordedEvent(p *Purchase, paymentID uuid.UUID, amount decimal.Decimal) *PurchasePaymentRecordedEvent {
	return &PurchasePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchasePaymentRecorded, AggregateTypePurchase, p.ID, p.TenantID),
		PaymentID:       paymentID,
		Amount:          amount,
		PaymentStatus:   p.PaymentStatus.String(),
	}
}
