package sales

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter narrows a sale listing
type Filter struct {
	shared.Filter
	Status        Status
	PaymentStatus payment.Status
	CustomerID    *uuid.UUID
}

// DailySummary aggregates one day of completed sales
type DailySummary struct {
	Date          time.Time
	SaleCount     int64
	TotalRevenue  decimal.Decimal
	TotalTax      decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalPaid     decimal.Decimal
	ByMethod      map[payment.Method]decimal.Decimal
}

// Repository persists sales with their items
type Repository interface {
	// Create inserts the sale and its items
	Create(ctx context.Context, sale *Sale) error
	// UpdatePayment persists paid amount and payment status
	UpdatePayment(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*Sale, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Sale, int64, error)
	DailySummary(ctx context.Context, tenantID uuid.UUID, day time.Time) (*DailySummary, error)
}
