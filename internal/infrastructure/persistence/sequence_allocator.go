package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceAllocator implements shared.SequenceAllocator on the invoice_sequences table.
// The counter row stays locked until the caller's transaction ends, so concurrent
// allocations for the same prefix are serialized and a rollback releases the number.
type GormSequenceAllocator struct {
	db *gorm.DB
}

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// Next returns the next value for (tenantID, prefix), starting at 1
func (a *GormSequenceAllocator) Next(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	db := a.db.WithContext(ctx)

	row, err := a.lockRow(db, tenantID, prefix)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seed := models.InvoiceSequenceModel{
			TenantID:  tenantID,
			Prefix:    prefix,
			UpdatedAt: time.Now().UTC(),
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return 0, translateError(err)
		}
		row, err = a.lockRow(db, tenantID, prefix)
	}
	if err != nil {
		return 0, translateError(err)
	}

	next := row.LastValue + 1
	err = db.Model(&models.InvoiceSequenceModel{}).
		Where("tenant_id = ? AND prefix = ?", tenantID, prefix).
		Updates(map[string]any{"last_value": next, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return 0, translateError(err)
	}
	return next, nil
}

func (a *GormSequenceAllocator) lockRow(db *gorm.DB, tenantID uuid.UUID, prefix string) (*models.InvoiceSequenceModel, error) {
	var row models.InvoiceSequenceModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND prefix = ?", tenantID, prefix).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Ensure GormSequenceAllocator implements shared.SequenceAllocator
var _ shared.SequenceAllocator = (*GormSequenceAllocator)(nil)
