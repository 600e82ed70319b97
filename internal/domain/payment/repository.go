package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository persists payments
type Repository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByDocument(ctx context.Context, tenantID uuid.UUID, doc DocumentType, documentID uuid.UUID) ([]Payment, error)
	// SumByDocument totals every payment referencing the document
	SumByDocument(ctx context.Context, tenantID uuid.UUID, doc DocumentType, documentID uuid.UUID) (decimal.Decimal, error)
}
