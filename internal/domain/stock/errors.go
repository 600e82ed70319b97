package stock

import (
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// InsufficientStockError is returned when a movement would drive stock below zero.
// It unwraps to a shared.DomainError with code INSUFFICIENT_STOCK.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int64
	Requested   int64
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(productID uuid.UUID, name string, available, requested int64) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Available:   available,
		Requested:   requested,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s (available: %d, requested: %d)", e.ProductName, e.Available, e.Requested)
}

// Unwrap exposes the domain error so handlers and errors.Is treat it as INSUFFICIENT_STOCK
func (e *InsufficientStockError) Unwrap() error {
	return shared.NewDomainError(shared.CodeInsufficientStock, e.Error())
}

// NewProductNotFoundError names the identifier the caller supplied
func NewProductNotFoundError(identifier string) *shared.DomainError {
	return shared.NewDomainErrorf(shared.CodeProductNotFound, "Product not found: %s", identifier)
}
