package purchase

import (
	"context"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows a purchase listing
type Filter struct {
	shared.Filter
	Status        Status
	PaymentStatus payment.Status
	SupplierID    *uuid.UUID
}

// Repository persists purchases with their items
type Repository interface {
	Create(ctx context.Context, purchase *Purchase) error
	UpdatePayment(ctx context.Context, purchase *Purchase) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Purchase, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Purchase, error)
	ExistsByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Purchase, int64, error)
}
