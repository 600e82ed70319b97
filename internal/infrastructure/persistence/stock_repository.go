package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/stock"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements stock.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.Product, error) {
	return r.findOne(r.db.WithContext(ctx), "tenant_id = ? AND id = ?", tenantID, id)
}

// FindByIDForUpdate finds a product by ID and locks its row until the transaction ends
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*stock.Product, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		"tenant_id = ? AND id = ?", tenantID, id)
}

// FindByBarcodeForUpdate finds a product by barcode and locks its row until the transaction ends
func (r *GormProductRepository) FindByBarcodeForUpdate(ctx context.Context, tenantID uuid.UUID, barcode string) (*stock.Product, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		"tenant_id = ? AND barcode = ?", tenantID, barcode)
}

func (r *GormProductRepository) findOne(db *gorm.DB, query string, args ...any) (*stock.Product, error) {
	var model models.ProductModel
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindLowStock returns active products at or below their reorder level
func (r *GormProductRepository) FindLowStock(ctx context.Context, tenantID uuid.UUID) ([]stock.Product, error) {
	var rows []models.ProductModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND reorder_level > 0 AND stock_quantity <= reorder_level", tenantID, true).
		Order("stock_quantity ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	products := make([]stock.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// CountLowStock counts low-stock products across all tenants, for the metrics gauge
func (r *GormProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("is_active = ? AND reorder_level > 0 AND stock_quantity <= reorder_level", true).
		Count(&n).Error
	return n, err
}

// Save inserts or updates a product including its master data
func (r *GormProductRepository) Save(ctx context.Context, product *stock.Product) error {
	model := models.ProductModelFromDomain(product)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// UpdateStock persists only the on-hand quantity and version
func (r *GormProductRepository) UpdateStock(ctx context.Context, product *stock.Product) error {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ?", product.TenantID, product.ID).
		Updates(map[string]any{
			"stock_quantity": product.StockQuantity,
			"version":        product.Version,
			"updated_at":     product.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return stock.NewProductNotFoundError(product.ID.String())
	}
	return nil
}

// UpdatePurchasePrice persists only the purchase price
func (r *GormProductRepository) UpdatePurchasePrice(ctx context.Context, product *stock.Product) error {
	return translateError(r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ?", product.TenantID, product.ID).
		Updates(map[string]any{
			"purchase_price": product.PurchasePrice,
			"version":        product.Version,
			"updated_at":     product.UpdatedAt,
		}).Error)
}

// GormMovementRepository implements stock.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Save appends a movement
func (r *GormMovementRepository) Save(ctx context.Context, movement *stock.Movement) error {
	return translateError(r.db.WithContext(ctx).Create(models.InventoryMovementModelFromDomain(movement)).Error)
}

// FindAll lists movements newest first
func (r *GormMovementRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter stock.MovementFilter) ([]stock.Movement, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.InventoryMovementModel{}).Where("tenant_id = ?", tenantID)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.MovementType != "" {
		query = query.Where("movement_type = ?", string(filter.MovementType))
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.From != nil {
		query = query.Where("movement_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("movement_date <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryMovementModel
	if err := pageOf(query, filter.Filter).Order("movement_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	movements := make([]stock.Movement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, total, nil
}

// SumByProduct returns Σ quantity over every movement of a product
func (r *GormMovementRepository) SumByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.InventoryMovementModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Scan(&sum).Error
	return sum, err
}

// Ensure interfaces are implemented
var (
	_ stock.ProductRepository  = (*GormProductRepository)(nil)
	_ stock.MovementRepository = (*GormMovementRepository)(nil)
)
