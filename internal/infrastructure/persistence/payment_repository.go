package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save inserts or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return translateError(r.db.WithContext(ctx).Save(models.PaymentModelFromDomain(p)).Error)
}

// FindByDocument lists a document's payments in the order they were made
func (r *GormPaymentRepository) FindByDocument(ctx context.Context, tenantID uuid.UUID, doc payment.DocumentType, documentID uuid.UUID) ([]payment.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_type = ? AND document_id = ?", tenantID, string(doc), documentID).
		Order("payment_date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	payments := make([]payment.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// SumByDocument totals every payment referencing the document
func (r *GormPaymentRepository) SumByDocument(ctx context.Context, tenantID uuid.UUID, doc payment.DocumentType, documentID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND document_type = ? AND document_id = ?", tenantID, string(doc), documentID).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

// Ensure GormPaymentRepository implements payment.Repository
var _ payment.Repository = (*GormPaymentRepository)(nil)
