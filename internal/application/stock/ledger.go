package stock

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
	"github.com/google/uuid"
)

// MovementInput describes one signed quantity change
type MovementInput struct {
	TenantID    uuid.UUID
	ProductID   uuid.UUID
	Quantity    int64
	Type        stock.MovementType
	ReferenceID *uuid.UUID
	WarehouseID *uuid.UUID
	Reason      string
}

// MovementResult is what RecordMovement applied
type MovementResult struct {
	Product  *stock.Product
	Movement *stock.Movement
	Previous int64
	Current  int64
}

// Ledger is the only writer of product stock quantities.
// It never opens a transaction; callers pass the repositories of the transaction they own.
type Ledger struct{}

// NewLedger creates a new stock Ledger
func NewLedger() *Ledger {
	return &Ledger{}
}

// RecordMovement locks the product row, applies the change and appends the movement.
// It fails with an InsufficientStockError when the result would be negative; nothing is
// written in that case.
func (l *Ledger) RecordMovement(ctx context.Context, repos uow.Repositories, in MovementInput) (*MovementResult, error) {
	if in.Quantity == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Quantity change cannot be zero")
	}

	product, err := repos.Products().FindByIDForUpdate(ctx, in.TenantID, in.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, stock.NewProductNotFoundError(in.ProductID.String())
		}
		return nil, err
	}

	previous, current, err := product.ApplyMovement(in.Quantity)
	if err != nil {
		return nil, err
	}

	movement, err := stock.NewMovement(in.TenantID, product.ID, in.Quantity, in.Type, current)
	if err != nil {
		return nil, err
	}
	if in.ReferenceID != nil {
		movement.WithReference(*in.ReferenceID)
	}
	if in.WarehouseID != nil {
		movement.WithWarehouse(*in.WarehouseID)
	}
	movement.WithReason(in.Reason)

	if err := repos.Products().UpdateStock(ctx, product); err != nil {
		return nil, err
	}
	if err := repos.Movements().Save(ctx, movement); err != nil {
		return nil, err
	}

	return &MovementResult{
		Product:  product,
		Movement: movement,
		Previous: previous,
		Current:  current,
	}, nil
}
