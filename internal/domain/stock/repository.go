package stock

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository reads and writes the stock view of products.
// The ForUpdate variants take a row lock that is held until the surrounding transaction ends.
type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByBarcodeForUpdate(ctx context.Context, tenantID uuid.UUID, barcode string) (*Product, error)
	FindLowStock(ctx context.Context, tenantID uuid.UUID) ([]Product, error)
	// Save inserts or updates a product including its master data
	Save(ctx context.Context, product *Product) error
	// UpdateStock persists only the on-hand quantity and version
	UpdateStock(ctx context.Context, product *Product) error
	// UpdatePurchasePrice persists only the purchase price
	UpdatePurchasePrice(ctx context.Context, product *Product) error
}

// MovementFilter narrows a movement listing
type MovementFilter struct {
	shared.Filter
	ProductID    *uuid.UUID
	MovementType MovementType
	ReferenceID  *uuid.UUID
}

// MovementRepository appends and reads stock movements
type MovementRepository interface {
	Save(ctx context.Context, movement *Movement) error
	FindAll(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]Movement, int64, error)
	SumByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)
}
