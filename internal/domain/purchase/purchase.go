package purchase

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchase is the aggregate type name used by purchase events
const AggregateTypePurchase = "Purchase"

// Status is the lifecycle state of a purchase
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Item is one received line of a purchase
type Item struct {
	ID          uuid.UUID
	PurchaseID  uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Tax         decimal.Decimal
	Discount    decimal.Decimal
	LineTotal   decimal.Decimal
}

// LineInput is the caller-supplied content of a purchase line
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
	Tax       decimal.Decimal
	Discount  decimal.Decimal
}

// Purchase is a supplier invoice received into stock
type Purchase struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string
	SupplierID     uuid.UUID
	PurchaseDate   time.Time
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	Status         Status
	PaymentStatus  payment.Status
	Notes          string
	Items          []Item
}

// NewPurchase creates a draft purchase for a supplier invoice
func NewPurchase(tenantID, supplierID uuid.UUID, invoiceNumber string, date time.Time) (*Purchase, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier ID cannot be empty")
	}
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invoice number cannot exceed 50 characters")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Purchase{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		SupplierID:          supplierID,
		PurchaseDate:        date.UTC(),
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

// AddItem appends a line; lineTotal = qty × unitPrice + tax - discount
func (p *Purchase) AddItem(productName string, in LineInput) error {
	if p.Status != StatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, "Items can only be added to a draft purchase")
	}
	if in.ProductID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Product ID is required")
	}
	if in.Quantity < 1 {
		return shared.NewDomainError(shared.CodeValidation, "Quantity must be at least 1")
	}
	if in.UnitPrice.IsNegative() || in.Tax.IsNegative() || in.Discount.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Amounts cannot be negative")
	}
	gross := in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity))
	if in.Discount.GreaterThan(gross) {
		return shared.NewDomainErrorf(shared.CodeValidation,
			"Discount %s exceeds line amount %s", in.Discount.StringFixed(2), gross.StringFixed(2))
	}
	lineTotal := gross.Add(in.Tax).Sub(in.Discount)
	p.Items = append(p.Items, Item{
		ID:          uuid.New(),
		PurchaseID:  p.ID,
		ProductID:   in.ProductID,
		ProductName: productName,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Tax:         in.Tax,
		Discount:    in.Discount,
		LineTotal:   lineTotal,
	})
	p.Subtotal = p.Subtotal.Add(gross)
	p.TaxAmount = p.TaxAmount.Add(in.Tax)
	p.DiscountAmount = p.DiscountAmount.Add(in.Discount)
	p.TotalAmount = p.TotalAmount.Add(lineTotal)
	return nil
}

// Confirm finalizes the purchase once its lines are in place
func (p *Purchase) Confirm() error {
	if p.Status != StatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot confirm purchase in %s status", p.Status)
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "A purchase needs at least one item")
	}
	p.Status = StatusConfirmed
	p.Touch()
	p.AddDomainEvent(NewPurchaseConfirmedEvent(p))
	return nil
}

// ApplyPaidAmount stores the total paid so far and re-derives the payment status
func (p *Purchase) ApplyPaidAmount(paid decimal.Decimal) {
	p.PaidAmount = paid
	p.PaymentStatus = payment.DeriveStatus(p.TotalAmount, paid)
	p.Touch()
}

// Outstanding is the amount still owed to the supplier
func (p *Purchase) Outstanding() decimal.Decimal {
	out := p.TotalAmount.Sub(p.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
