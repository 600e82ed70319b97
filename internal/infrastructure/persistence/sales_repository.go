package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements sales.Repository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts the sale and its items.
// A clash on invoice number or idempotency key surfaces as shared.ErrAlreadyExists.
func (r *GormSaleRepository) Create(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err)
}

// UpdatePayment persists paid amount and payment status
func (r *GormSaleRepository) UpdatePayment(ctx context.Context, sale *sales.Sale) error {
	return translateError(r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("tenant_id = ? AND id = ?", sale.TenantID, sale.ID).
		Updates(map[string]any{
			"paid_amount":    sale.PaidAmount,
			"payment_status": string(sale.PaymentStatus),
			"version":        sale.Version,
			"updated_at":     sale.UpdatedAt,
		}).Error)
}

// FindByID finds a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	return r.findOne(r.db.WithContext(ctx), "tenant_id = ? AND id = ?", tenantID, id)
}

// FindByIDForUpdate finds a sale with its items and locks the sale row
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		"tenant_id = ? AND id = ?", tenantID, id)
}

// FindByIdempotencyKey finds the sale a checkout key produced
func (r *GormSaleRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*sales.Sale, error) {
	return r.findOne(r.db.WithContext(ctx), "tenant_id = ? AND idempotency_key = ?", tenantID, key)
}

func (r *GormSaleRepository) findOne(db *gorm.DB, query string, args ...any) (*sales.Sale, error) {
	var model models.SaleModel
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	if err := r.loadItems(db, []*models.SaleModel{&model}); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// loadItems fills Items for the given sales with one query.
// Preload is avoided so a row lock on the parent does not also lock-scan the items.
func (r *GormSaleRepository) loadItems(db *gorm.DB, sales []*models.SaleModel) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(sales))
	byID := make(map[uuid.UUID]*models.SaleModel, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		byID[s.ID] = s
	}
	var items []models.SaleItemModel
	if err := db.Session(&gorm.Session{NewDB: true}).
		Where("sale_id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return err
	}
	for _, it := range items {
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	return nil
}

// FindAll lists sales newest first
func (r *GormSaleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter sales.Filter) ([]sales.Sale, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", string(filter.PaymentStatus))
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("sale_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("sale_date <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := pageOf(query, filter.Filter).Order("sale_date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	ptrs := make([]*models.SaleModel, len(rows))
	for i := range rows {
		ptrs[i] = &rows[i]
	}
	if err := r.loadItems(r.db.WithContext(ctx), ptrs); err != nil {
		return nil, 0, err
	}
	result := make([]sales.Sale, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, total, nil
}

// DailySummary aggregates the completed sales dated on day (UTC) and the payments
// recorded against them, split by payment method
func (r *GormSaleRepository) DailySummary(ctx context.Context, tenantID uuid.UUID, day time.Time) (*sales.DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var totals struct {
		SaleCount     int64
		TotalRevenue  decimal.Decimal
		TotalTax      decimal.Decimal
		TotalDiscount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Select("COUNT(*) AS sale_count, "+
			"COALESCE(SUM(total_amount), 0) AS total_revenue, "+
			"COALESCE(SUM(tax_amount), 0) AS total_tax, "+
			"COALESCE(SUM(discount_amount), 0) AS total_discount").
		Where("tenant_id = ? AND status = ? AND sale_date >= ? AND sale_date < ?",
			tenantID, string(sales.StatusCompleted), start, end).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var byMethod []struct {
		Method string
		Amount decimal.Decimal
	}
	err = r.db.WithContext(ctx).
		Table("payments AS p").
		Select("p.method, COALESCE(SUM(p.amount), 0) AS amount").
		Joins("JOIN sales s ON s.id = p.document_id AND s.tenant_id = p.tenant_id").
		Where("p.tenant_id = ? AND p.document_type = ? AND s.status = ? AND s.sale_date >= ? AND s.sale_date < ?",
			tenantID, string(payment.DocumentTypeSale), string(sales.StatusCompleted), start, end).
		Group("p.method").
		Scan(&byMethod).Error
	if err != nil {
		return nil, err
	}

	summary := &sales.DailySummary{
		Date:          start,
		SaleCount:     totals.SaleCount,
		TotalRevenue:  totals.TotalRevenue,
		TotalTax:      totals.TotalTax,
		TotalDiscount: totals.TotalDiscount,
		TotalPaid:     decimal.Zero,
		ByMethod:      make(map[payment.Method]decimal.Decimal, len(byMethod)),
	}
	for _, m := range byMethod {
		summary.ByMethod[payment.Method(m.Method)] = m.Amount
		summary.TotalPaid = summary.TotalPaid.Add(m.Amount)
	}
	return summary, nil
}

// Ensure GormSaleRepository implements sales.Repository
var _ sales.Repository = (*GormSaleRepository)(nil)
