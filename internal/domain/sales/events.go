package sales

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeSaleCompleted       = "SaleCompleted"
	EventTypeSalePaymentRecorded = "SalePaymentRecorded"
)

// SaleCompletedEvent is raised when a checkout commits
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	ItemCount     int             `json:"item_count"`
}

// NewSaleCompletedEvent creates a SaleCompletedEvent
func NewSaleCompletedEvent(s *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, s.ID, s.TenantID),
		InvoiceNumber:   s.InvoiceNumber,
		TotalAmount:     s.TotalAmount,
		TaxAmount:       s.TaxAmount,
		ItemCount:       len(s.Items),
	}
}

// SalePaymentRecordedEvent is raised when a payment is recorded after checkout
type SalePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
}

// NewSalePaymentRecordedEvent creates a SalePaymentRecordedEvent
func NewSalePaymentRecordedEvent(s *Sale, paymentID uuid.UUID, amount decimal.Decimal) *SalePaymentRecordedEvent {
	return &SalePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalePaymentRecorded, AggregateTypeSale, s.ID, s.TenantID),
		PaymentID:       paymentID,
		Amount:          amount,
		PaymentStatus:   s.PaymentStatus.String(),
	}
}
