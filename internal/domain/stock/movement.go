package stock

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeSale       MovementType = "sale"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeReturn     MovementType = "return"
	MovementTypeTransfer   MovementType = "transfer"
)

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeAdjustment, MovementTypeReturn, MovementTypeTransfer:
		return true
	}
	return false
}

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// Movement is an immutable audit record of a signed quantity change.
// The sum of Quantity over a product's movements equals its stock change since creation.
type Movement struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	ProductID    uuid.UUID
	WarehouseID  *uuid.UUID
	Quantity     int64
	MovementType MovementType
	ReferenceID  *uuid.UUID
	Reason       string
	BalanceAfter int64
	MovementDate time.Time
}

// NewMovement creates a movement record for an applied quantity change
func NewMovement(tenantID, productID uuid.UUID, quantity int64, movementType MovementType, balanceAfter int64) (*Movement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if quantity == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Movement quantity cannot be zero")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid movement type: %s", movementType)
	}
	base := shared.NewBaseEntity()
	return &Movement{
		BaseEntity:   base,
		TenantID:     tenantID,
		ProductID:    productID,
		Quantity:     quantity,
		MovementType: movementType,
		BalanceAfter: balanceAfter,
		MovementDate: base.CreatedAt,
	}, nil
}

// WithReference links the movement to the sale or purchase that caused it
func (m *Movement) WithReference(referenceID uuid.UUID) *Movement {
	m.ReferenceID = &referenceID
	return m
}

// WithWarehouse records the warehouse the movement happened in
func (m *Movement) WithWarehouse(warehouseID uuid.UUID) *Movement {
	m.WarehouseID = &warehouseID
	return m
}

// WithReason sets the free-text reason
func (m *Movement) WithReason(reason string) *Movement {
	m.Reason = strings.TrimSpace(reason)
	return m
}
