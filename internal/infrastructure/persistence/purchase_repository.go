package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/purchase"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseRepository implements purchase.Repository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Create inserts the purchase and its items
func (r *GormPurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	model := models.PurchaseModelFromDomain(p)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			return tx.Create(&model.Items).Error
		}
		return nil
	})
	return translateError(err)
}

// UpdatePayment persists paid amount and payment status
func (r *GormPurchaseRepository) UpdatePayment(ctx context.Context, p *purchase.Purchase) error {
	return translateError(r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("tenant_id = ? AND id = ?", p.TenantID, p.ID).
		Updates(map[string]any{
			"paid_amount":    p.PaidAmount,
			"payment_status": string(p.PaymentStatus),
			"version":        p.Version,
			"updated_at":     p.UpdatedAt,
		}).Error)
}

// FindByID finds a purchase with its items
func (r *GormPurchaseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*purchase.Purchase, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a purchase with its items and locks the purchase row
func (r *GormPurchaseRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchase.Purchase, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormPurchaseRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*purchase.Purchase, error) {
	var model models.PurchaseModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	if err := db.Session(&gorm.Session{NewDB: true}).
		Where("purchase_id = ?", model.ID).
		Order("created_at ASC, id ASC").
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByInvoiceNumber checks whether the supplier invoice number is already recorded
func (r *GormPurchaseRepository) ExistsByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseModel{}).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists purchases newest first
func (r *GormPurchaseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter purchase.Filter) ([]purchase.Purchase, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", string(filter.PaymentStatus))
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.From != nil {
		query = query.Where("purchase_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("purchase_date <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PurchaseModel
	err := pageOf(query, filter.Filter).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Order("purchase_date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	result := make([]purchase.Purchase, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, total, nil
}

// Ensure GormPurchaseRepository implements purchase.Repository
var _ purchase.Repository = (*GormPurchaseRepository)(nil)
