package payment

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is how a payment was made
type Method string

const (
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
	MethodCheque       Method = "cheque"
	MethodMobileMoney  Method = "mobile_money"
)

// IsValid returns true if the method is known
func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodCheque, MethodMobileMoney:
		return true
	}
	return false
}

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}

// DocumentType is the kind of document a payment settles
type DocumentType string

const (
	DocumentTypeSale     DocumentType = "sale"
	DocumentTypePurchase DocumentType = "purchase"
)

// PartyType is the counterparty of a payment
type PartyType string

const (
	PartyTypeCustomer PartyType = "customer"
	PartyTypeSupplier PartyType = "supplier"
)

// PartyFor returns the counterparty type implied by a document type
func PartyFor(doc DocumentType) PartyType {
	if doc == DocumentTypePurchase {
		return PartyTypeSupplier
	}
	return PartyTypeCustomer
}

// Payment is money received from a customer or paid to a supplier against a document
type Payment struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	DocumentType DocumentType
	DocumentID   uuid.UUID
	PartyType    PartyType
	PartyID      *uuid.UUID
	Amount       decimal.Decimal
	Method       Method
	PaymentDate  time.Time
	Reference    string
	Notes        string
	VoucherID    *uuid.UUID
}

// NewPayment validates and creates a payment against a document
func NewPayment(tenantID uuid.UUID, doc DocumentType, documentID uuid.UUID, amount decimal.Decimal, method Method, date time.Time) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document ID cannot be empty")
	}
	if doc != DocumentTypeSale && doc != DocumentTypePurchase {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid document type: %s", doc)
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid payment method: %s", method)
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Payment{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		DocumentType: doc,
		DocumentID:   documentID,
		PartyType:    PartyFor(doc),
		Amount:       amount,
		Method:       method,
		PaymentDate:  date.UTC(),
	}, nil
}

// WithParty records the customer or supplier id
func (p *Payment) WithParty(partyID *uuid.UUID) *Payment {
	p.PartyID = partyID
	return p
}

// WithDetails sets the reference and notes
func (p *Payment) WithDetails(reference, notes string) *Payment {
	p.Reference = strings.TrimSpace(reference)
	p.Notes = strings.TrimSpace(notes)
	return p
}

// LinkVoucher records the voucher that posted this payment
func (p *Payment) LinkVoucher(voucherID uuid.UUID) {
	p.VoucherID = &voucherID
}
