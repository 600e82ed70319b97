package sales

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeSale is the aggregate type name used by sale events
const AggregateTypeSale = "Sale"

// InvoicePrefix is the document prefix of sale invoice numbers (INV-YYYYMM-XXXX)
const InvoicePrefix = "INV"

// Status is the lifecycle state of a sale
type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusCompleted, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// AcceptsPayments reports whether payments may still be recorded
func (s Status) AcceptsPayments() bool {
	return s == StatusDraft || s == StatusCompleted
}

// Item is one line of a sale
type Item struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Tax         decimal.Decimal
	Discount    decimal.Decimal
	LineTotal   decimal.Decimal
	UnitCost    decimal.Decimal
}

// CostTotal is the inventory cost of the line
func (i Item) CostTotal() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(i.Quantity))
}

// Sale is a completed point-of-sale checkout
type Sale struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string
	SaleDate       time.Time
	CustomerID     *uuid.UUID
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	Status         Status
	PaymentStatus  payment.Status
	IdempotencyKey *string
	Notes          string
	Items          []Item
}

// NewSale creates an empty draft sale
func NewSale(tenantID uuid.UUID, invoiceNumber string, date time.Time) (*Sale, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invoice number cannot be empty")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		SaleDate:            date.UTC(),
		Subtotal:            decimal.Zero,
		TaxAmount:           decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
		PaidAmount:          decimal.Zero,
		Status:              StatusDraft,
		PaymentStatus:       payment.StatusUnpaid,
		Items:               make([]Item, 0),
	}, nil
}

// SetIdempotencyKey records the client token; blank keys are ignored
func (s *Sale) SetIdempotencyKey(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		s.IdempotencyKey = nil
		return
	}
	s.IdempotencyKey = &key
}

// AddItem appends a priced line and accumulates the sale totals
func (s *Sale) AddItem(productID uuid.UUID, productName string, pricing LinePricing, unitCost decimal.Decimal) error {
	if s.Status != StatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, "Items can only be added to a draft sale")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	item := Item{
		ID:          uuid.New(),
		SaleID:      s.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    pricing.Quantity,
		UnitPrice:   pricing.UnitPrice,
		Tax:         pricing.Tax,
		Discount:    pricing.Discount,
		LineTotal:   pricing.LineTotal,
		UnitCost:    unitCost,
	}
	s.Items = append(s.Items, item)
	s.Subtotal = s.Subtotal.Add(pricing.UnitPrice.Mul(decimal.NewFromInt(pricing.Quantity)))
	s.TaxAmount = s.TaxAmount.Add(pricing.Tax)
	s.DiscountAmount = s.DiscountAmount.Add(pricing.Discount)
	s.TotalAmount = s.TotalAmount.Add(pricing.LineTotal)
	return nil
}

// Complete finalizes the sale after its lines are in place
func (s *Sale) Complete() error {
	if s.Status != StatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot complete sale in %s status", s.Status)
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "A sale needs at least one item")
	}
	s.Status = StatusCompleted
	s.Touch()
	s.AddDomainEvent(NewSaleCompletedEvent(s))
	return nil
}

// ApplyPaidAmount stores the total paid so far and re-derives the payment status
func (s *Sale) ApplyPaidAmount(paid decimal.Decimal) {
	s.PaidAmount = paid
	s.PaymentStatus = payment.DeriveStatus(s.TotalAmount, paid)
	s.Touch()
}

// Outstanding is the amount still owed by the customer
func (s *Sale) Outstanding() decimal.Decimal {
	out := s.TotalAmount.Sub(s.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// CostTotal sums the inventory cost of all lines
func (s *Sale) CostTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.CostTotal())
	}
	return total
}
