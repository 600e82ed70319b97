package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements accounting.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Save inserts or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *accounting.Account) error {
	return translateError(r.db.WithContext(ctx).Save(models.AccountModelFromDomain(account)).Error)
}

// FindByID finds an account by ID within a tenant
func (r *GormAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*accounting.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds an account by its code within a tenant
func (r *GormAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*accounting.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND code = ?", tenantID, code).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCodes returns the accounts found keyed by code
func (r *GormAccountRepository) FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) (map[string]*accounting.Account, error) {
	result := make(map[string]*accounting.Account, len(codes))
	if len(codes) == 0 {
		return result, nil
	}
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND code IN ?", tenantID, codes).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].Code] = rows[i].ToDomain()
	}
	return result, nil
}

// FindByIDs returns the accounts found keyed by id
func (r *GormAccountRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*accounting.Account, error) {
	result := make(map[uuid.UUID]*accounting.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// FindAll lists the chart of accounts ordered by code, optionally for a single type
func (r *GormAccountRepository) FindAll(ctx context.Context, tenantID uuid.UUID, accountType *accounting.AccountType) ([]accounting.Account, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if accountType != nil {
		query = query.Where("account_type = ?", string(*accountType))
	}
	var rows []models.AccountModel
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]accounting.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

// ExistsByCode checks whether the tenant already uses an account code
func (r *GormAccountRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormVoucherRepository implements accounting.VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// Create inserts the voucher header and all its entries
func (r *GormVoucherRepository) Create(ctx context.Context, voucher *accounting.Voucher) error {
	model := models.VoucherModelFromDomain(voucher)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Entries) > 0 {
			if err := tx.Create(&model.Entries).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err)
}

// FindByID finds a voucher with its entries in line order
func (r *GormVoucherRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*accounting.Voucher, error) {
	var model models.VoucherModel
	err := r.db.WithContext(ctx).
		Preload("Entries", orderedEntries).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists vouchers newest first
func (r *GormVoucherRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter accounting.VoucherFilter) ([]accounting.Voucher, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.VoucherModel{}).Where("tenant_id = ?", tenantID)
	if filter.VoucherType != "" {
		query = query.Where("voucher_type = ?", string(filter.VoucherType))
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.From != nil {
		query = query.Where("voucher_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("voucher_date <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.VoucherModel
	err := pageOf(query, filter.Filter).
		Preload("Entries", orderedEntries).
		Order("voucher_date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	vouchers := make([]accounting.Voucher, len(rows))
	for i := range rows {
		vouchers[i] = *rows[i].ToDomain()
	}
	return vouchers, total, nil
}

func orderedEntries(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

// GormLedgerReader implements accounting.LedgerReader with aggregate SQL over journal entries
type GormLedgerReader struct {
	db *gorm.DB
}

// NewGormLedgerReader creates a new GormLedgerReader
func NewGormLedgerReader(db *gorm.DB) *GormLedgerReader {
	return &GormLedgerReader{db: db}
}

type ledgerRowRecord struct {
	EntryID       uuid.UUID
	VoucherID     uuid.UUID
	VoucherNumber string
	VoucherType   string
	EntryDate     time.Time
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// EntriesForAccount returns the account's entries within [from, to] ordered by date,
// voucher creation and line number
func (r *GormLedgerReader) EntriesForAccount(ctx context.Context, tenantID, accountID uuid.UUID, from, to *time.Time) ([]accounting.LedgerRow, error) {
	query := r.db.WithContext(ctx).
		Table("journal_entries AS je").
		Select("je.id AS entry_id, je.voucher_id, v.voucher_number, v.voucher_type, je.entry_date, je.description, je.debit, je.credit").
		Joins("JOIN vouchers v ON v.id = je.voucher_id").
		Where("je.tenant_id = ? AND je.account_id = ?", tenantID, accountID)
	if from != nil {
		query = query.Where("je.entry_date >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("je.entry_date <= ?", to.UTC())
	}

	var records []ledgerRowRecord
	if err := query.Order("je.entry_date ASC, v.created_at ASC, je.line_number ASC").Scan(&records).Error; err != nil {
		return nil, err
	}
	rows := make([]accounting.LedgerRow, len(records))
	for i, rec := range records {
		rows[i] = accounting.LedgerRow{
			EntryID:       rec.EntryID,
			VoucherID:     rec.VoucherID,
			VoucherNumber: rec.VoucherNumber,
			VoucherType:   accounting.VoucherType(rec.VoucherType),
			EntryDate:     rec.EntryDate.UTC(),
			Description:   rec.Description,
			Debit:         rec.Debit,
			Credit:        rec.Credit,
		}
	}
	return rows, nil
}

// NetBefore returns Σdebit - Σcredit over entries dated strictly before date
func (r *GormLedgerReader) NetBefore(ctx context.Context, tenantID, accountID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	var out struct {
		Debit  decimal.Decimal
		Credit decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Select("COALESCE(SUM(debit), 0) AS debit, COALESCE(SUM(credit), 0) AS credit").
		Where("tenant_id = ? AND account_id = ? AND entry_date < ?", tenantID, accountID, date.UTC()).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Debit.Sub(out.Credit), nil
}

type accountTotalsRecord struct {
	AccountID   uuid.UUID
	Code        string
	Name        string
	AccountType string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Totals aggregates entries per account within [from, to]. Every account of the tenant
// is returned, with zero totals when it has no entries in range.
func (r *GormLedgerReader) Totals(ctx context.Context, tenantID uuid.UUID, from *time.Time, to time.Time) ([]accounting.AccountTotals, error) {
	join := "LEFT JOIN journal_entries je ON je.account_id = a.id AND je.tenant_id = a.tenant_id AND je.entry_date <= ?"
	args := []any{to.UTC()}
	if from != nil {
		join += " AND je.entry_date >= ?"
		args = append(args, from.UTC())
	}

	var records []accountTotalsRecord
	err := r.db.WithContext(ctx).
		Table("accounts AS a").
		Select("a.id AS account_id, a.code, a.name, a.account_type, COALESCE(SUM(je.debit), 0) AS debit, COALESCE(SUM(je.credit), 0) AS credit").
		Joins(join, args...).
		Where("a.tenant_id = ?", tenantID).
		Group("a.id, a.code, a.name, a.account_type").
		Order("a.code ASC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	totals := make([]accounting.AccountTotals, len(records))
	for i, rec := range records {
		totals[i] = accounting.AccountTotals{
			AccountID:   rec.AccountID,
			Code:        rec.Code,
			Name:        rec.Name,
			AccountType: accounting.AccountType(rec.AccountType),
			Debit:       rec.Debit,
			Credit:      rec.Credit,
		}
	}
	return totals, nil
}

// Ensure interfaces are implemented
var (
	_ accounting.AccountRepository = (*GormAccountRepository)(nil)
	_ accounting.VoucherRepository = (*GormVoucherRepository)(nil)
	_ accounting.LedgerReader      = (*GormLedgerReader)(nil)
)
